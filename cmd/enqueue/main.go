package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/internal/config"
	"github.com/jwebster45206/masquerade/internal/logger"
	"github.com/jwebster45206/masquerade/internal/services/queue"
	"github.com/jwebster45206/masquerade/internal/storage"
	"github.com/jwebster45206/masquerade/pkg/geom"
	"github.com/jwebster45206/masquerade/pkg/mask"
	queuePkg "github.com/jwebster45206/masquerade/pkg/queue"
)

// enqueue pushes one player event straight into a session's Redis queue,
// bypassing the HTTP API. Useful when driving a running server by hand.
func main() {
	sessionFlag := flag.String("session", "", "session ID (required)")
	typeFlag := flag.String("type", string(queuePkg.EventPlayerEnteredRoom), "event type")
	elevator := flag.Int("elevator", -1, "elevator index for elevator events")
	npc := flag.Int("npc", -1, "NPC id for npc_interacted")
	maskCode := flag.String("mask", "", "mask code for mask_selected, e.g. MR.SH")
	x := flag.Float64("x", 0, "x position for player_moved")
	z := flag.Float64("z", 0, "z position for player_moved")
	flag.Parse()

	sessionID, err := uuid.Parse(*sessionFlag)
	if err != nil {
		log.Fatal("A valid -session ID is required: ", err)
	}

	event := &queuePkg.PlayerEvent{
		EventID:    uuid.NewString(),
		Type:       queuePkg.EventType(*typeFlag),
		SessionID:  sessionID,
		EnqueuedAt: time.Now(),
	}
	if *elevator >= 0 {
		event.Elevator = elevator
	}
	if *npc >= 0 {
		event.NpcID = npc
	}
	if *maskCode != "" {
		m, ok := mask.ParseCode(*maskCode)
		if !ok {
			log.Fatalf("Invalid mask code %q", *maskCode)
		}
		event.Mask = &m
	}
	if event.Type == queuePkg.EventPlayerMoved {
		event.Position = &geom.Vec3{X: *x, Z: *z}
	}
	if err := event.Validate(); err != nil {
		log.Fatal("Invalid event: ", err)
	}

	cfg := config.Load()
	appLogger := logger.Setup(cfg)

	rdb, err := storage.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to configure Redis: ", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	q := queue.NewEventQueue(queue.NewClientFromRedis(rdb, appLogger), appLogger)
	if err := q.Enqueue(ctx, event); err != nil {
		log.Fatal("Failed to enqueue event: ", err)
	}

	data, _ := json.MarshalIndent(event, "", "  ")
	fmt.Printf("✅ Enqueued %s\n%s\n", event.Type, data)

	depth, err := q.Depth(ctx, sessionID)
	if err == nil {
		fmt.Printf("\n📊 Queue depth: %d events\n", depth)
	}
}
