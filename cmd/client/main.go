package main

import (
	"context"
	"fmt"
	"os"
	"time"

	grpcapi "notes-store/internal/api/grpc"

	"github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const defaultAddress = "localhost:50051"

func main() {
	// Получаем адрес сервера из переменной окружения или используем значение по умолчанию
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultAddress
	}

	logrus.Printf("Connecting to gRPC server at %s...", address)

	conn, err := grpc.NewClient(
		address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		logrus.Fatalf("Failed to create client: %v", err)
	}
	defer conn.Close()

	client := grpcapi.NewNotesServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Токен нужен, только если на сервере задан server.auth_token
	if token := os.Getenv("AUTH_TOKEN"); token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", fmt.Sprintf("Bearer %s", token))
	}

	// Выбираем, какой сценарий запустить через переменную окружения или аргумент
	testType := os.Getenv("TEST_TYPE")
	if testType == "" && len(os.Args) > 1 {
		testType = os.Args[1]
	}

	switch testType {
	case "streaming", "stream":
		testSubscribeToEvents(ctx, client)
	case "error":
		testErrorHandling(ctx, client)
	case "roundtrip", "success":
		testRoundTrip(ctx, client)
	default:
		logrus.Println("Available test types: roundtrip, streaming, error")
		logrus.Println("Usage: TEST_TYPE=roundtrip go run ./cmd/client OR go run ./cmd/client roundtrip")
		testRoundTrip(ctx, client)
	}
}

// testErrorHandling показывает детали ошибок NotFound и InvalidArgument
func testErrorHandling(ctx context.Context, client grpcapi.NotesServiceClient) {
	logrus.Println("\n=== Testing Rich Error Handling ===")

	nonExistentID := "non-existent-id-12345"
	logrus.Printf("Attempting to get note with ID: %s", nonExistentID)
	_, err := client.GetNote(ctx, &grpcapi.GetNoteRequest{ID: nonExistentID})
	printStatus(err)

	short := "ab"
	logrus.Printf("Attempting to create note with title %q", short)
	_, err = client.CreateNote(ctx, &grpcapi.CreateNoteRequest{Title: &short})
	printStatus(err)
}

func printStatus(err error) {
	if err == nil {
		logrus.Println("⚠️  Request succeeded unexpectedly")
		return
	}

	st := status.Convert(err)
	logrus.Printf("  Status Code: %s", st.Code())
	logrus.Printf("  Status Message: %s", st.Message())

	if st.Code() == codes.Unauthenticated {
		logrus.Println("  Set AUTH_TOKEN to the server token")
		return
	}

	for i, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ResourceInfo:
			logrus.Printf("  Detail #%d ResourceInfo: %s %s (%s)", i+1, d.ResourceType, d.ResourceName, d.Description)
		case *errdetails.BadRequest:
			for _, v := range d.FieldViolations {
				logrus.Printf("  Detail #%d BadRequest: %s: %s", i+1, v.Field, v.Description)
			}
		case *errdetails.ErrorInfo:
			logrus.Printf("  Detail #%d ErrorInfo: %s (%s)", i+1, d.Reason, d.Domain)
		default:
			logrus.Printf("  Detail #%d %T: %+v", i+1, d, d)
		}
	}
}

// testRoundTrip создает, читает, обновляет и удаляет заметку
func testRoundTrip(ctx context.Context, client grpcapi.NotesServiceClient) {
	logrus.Println("\n=== Testing Round Trip ===")

	title, body := "Nota E2E de Prueba", "Contenido inicial de la nota"
	created, err := client.CreateNote(ctx, &grpcapi.CreateNoteRequest{Title: &title, Body: &body})
	if err != nil {
		logrus.Fatalf("Failed to create note: %v", err)
	}
	logrus.Printf("Created note with ID: %s", created.Note.ID)

	list, err := client.ListNotes(ctx, &emptypb.Empty{})
	if err != nil {
		logrus.Fatalf("Failed to list notes: %v", err)
	}
	logrus.Printf("Store holds %d note(s)", len(list.Notes))

	newTitle := "Nota E2E Actualizada"
	upd := &grpcapi.UpdateNoteRequest{ID: created.Note.ID}
	upd.Title = &newTitle
	updated, err := client.UpdateNote(ctx, upd)
	if err != nil {
		logrus.Fatalf("Failed to update note: %v", err)
	}
	logrus.Printf("Updated note: %q / %q (updated at %v)", updated.Note.Title, updated.Note.Body, updated.Note.UpdatedAt)

	if _, err := client.DeleteNotes(ctx, &grpcapi.DeleteNotesRequest{IDs: []string{created.Note.ID}}); err != nil {
		logrus.Fatalf("Failed to delete note: %v", err)
	}

	_, err = client.GetNote(ctx, &grpcapi.GetNoteRequest{ID: created.Note.ID})
	if status.Code(err) == codes.NotFound {
		logrus.Println("✅ Note deleted")
	} else {
		logrus.Printf("⚠️  Expected NotFound after delete, got: %v", err)
	}
}
