package main

import (
	"context"
	"errors"
	"io"
	"time"

	grpcapi "notes-store/internal/api/grpc"
	"notes-store/internal/model"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/emptypb"
)

// testSubscribeToEvents тестирует server-side streaming - подписку на события
func testSubscribeToEvents(ctx context.Context, client grpcapi.NotesServiceClient) {
	logrus.Println("\n=== Testing Server-Side Streaming: SubscribeToEvents ===")

	// Стрим живет дольше таймаута обычных запросов
	streamCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Minute)
	defer cancel()

	stream, err := client.SubscribeToEvents(streamCtx, &emptypb.Empty{})
	if err != nil {
		logrus.Fatalf("Failed to subscribe: %v", err)
	}

	logrus.Println("Waiting for events (create or delete notes in another terminal)...")

	counts := make(map[model.EventType]int)
	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			logrus.Println("📡 Stream closed by server (EOF)")
			break
		}
		if err != nil {
			logrus.Printf("Stream finished: %v", err)
			break
		}

		counts[event.Type]++
		switch event.Type {
		case model.EventSubscribed:
			logrus.Printf("✅ Subscribed at %v", event.OccurredAt)
		case model.EventCreated, model.EventUpdated:
			if event.Note != nil {
				logrus.Printf("🎉 Note %s: %s %q", event.Type, event.Note.ID, event.Note.Title)
			}
		case model.EventDeleted:
			logrus.Printf("🗑  Notes deleted: %v", event.NoteIDs)
		default:
			logrus.Printf("⚠️  Unknown event type: %s", event.Type)
		}
	}

	logrus.Printf("Events received: %v", counts)
}
