package grpc

import (
	"context"

	"notes-store/internal/model"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Полные имена методов NotesService
const (
	ServiceName                         = "notes.v1.NotesService"
	NotesService_CreateNote_FullMethod  = "/notes.v1.NotesService/CreateNote"
	NotesService_ListNotes_FullMethod   = "/notes.v1.NotesService/ListNotes"
	NotesService_GetNote_FullMethod     = "/notes.v1.NotesService/GetNote"
	NotesService_UpdateNote_FullMethod  = "/notes.v1.NotesService/UpdateNote"
	NotesService_DeleteNotes_FullMethod = "/notes.v1.NotesService/DeleteNotes"
	NotesService_Subscribe_FullMethod   = "/notes.v1.NotesService/SubscribeToEvents"
)

// NotesServiceServer серверная часть NotesService
type NotesServiceServer interface {
	CreateNote(context.Context, *CreateNoteRequest) (*NoteResponse, error)
	ListNotes(context.Context, *emptypb.Empty) (*ListNotesResponse, error)
	GetNote(context.Context, *GetNoteRequest) (*NoteResponse, error)
	UpdateNote(context.Context, *UpdateNoteRequest) (*NoteResponse, error)
	DeleteNotes(context.Context, *DeleteNotesRequest) (*emptypb.Empty, error)
	SubscribeToEvents(*emptypb.Empty, grpc.ServerStreamingServer[model.NoteEvent]) error
}

// unaryHandler строит grpc.MethodHandler для метода с запросом Req и ответом Res
func unaryHandler[Req, Res any](fullMethod string, call func(NotesServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, decodeError(err)
		}
		if interceptor == nil {
			return call(srv.(NotesServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(NotesServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// decodeError ошибки разбора тела это ошибки клиента: Internal от grpc меняется на InvalidArgument
func decodeError(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.Internal {
		return status.Error(codes.InvalidArgument, st.Message())
	}
	return err
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(NotesServiceServer).SubscribeToEvents(in, &grpc.GenericServerStream[emptypb.Empty, model.NoteEvent]{ServerStream: stream})
}

// NotesService_ServiceDesc описание сервиса для grpc.Server
var NotesService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateNote",
			Handler:    unaryHandler(NotesService_CreateNote_FullMethod, NotesServiceServer.CreateNote),
		},
		{
			MethodName: "ListNotes",
			Handler:    unaryHandler(NotesService_ListNotes_FullMethod, NotesServiceServer.ListNotes),
		},
		{
			MethodName: "GetNote",
			Handler:    unaryHandler(NotesService_GetNote_FullMethod, NotesServiceServer.GetNote),
		},
		{
			MethodName: "UpdateNote",
			Handler:    unaryHandler(NotesService_UpdateNote_FullMethod, NotesServiceServer.UpdateNote),
		},
		{
			MethodName: "DeleteNotes",
			Handler:    unaryHandler(NotesService_DeleteNotes_FullMethod, NotesServiceServer.DeleteNotes),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeToEvents",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "notes/v1/notes.proto",
}

// RegisterNotesServiceServer регистрирует реализацию на сервере
func RegisterNotesServiceServer(s grpc.ServiceRegistrar, srv NotesServiceServer) {
	s.RegisterService(&NotesService_ServiceDesc, srv)
}

// NotesServiceClient клиент NotesService. Вызовы идут через JSON кодек
type NotesServiceClient interface {
	CreateNote(ctx context.Context, in *CreateNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error)
	ListNotes(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListNotesResponse, error)
	GetNote(ctx context.Context, in *GetNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error)
	UpdateNote(ctx context.Context, in *UpdateNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error)
	DeleteNotes(ctx context.Context, in *DeleteNotesRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SubscribeToEvents(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[model.NoteEvent], error)
}

type notesServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewNotesServiceClient создает клиента поверх соединения
func NewNotesServiceClient(cc grpc.ClientConnInterface) NotesServiceClient {
	return &notesServiceClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *notesServiceClient) CreateNote(ctx context.Context, in *CreateNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c.cc, NotesService_CreateNote_FullMethod, in, opts)
}

func (c *notesServiceClient) ListNotes(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*ListNotesResponse, error) {
	return invoke[ListNotesResponse](ctx, c.cc, NotesService_ListNotes_FullMethod, in, opts)
}

func (c *notesServiceClient) GetNote(ctx context.Context, in *GetNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c.cc, NotesService_GetNote_FullMethod, in, opts)
}

func (c *notesServiceClient) UpdateNote(ctx context.Context, in *UpdateNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c.cc, NotesService_UpdateNote_FullMethod, in, opts)
}

func (c *notesServiceClient) DeleteNotes(ctx context.Context, in *DeleteNotesRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, NotesService_DeleteNotes_FullMethod, in, opts)
}

func (c *notesServiceClient) SubscribeToEvents(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[model.NoteEvent], error) {
	stream, err := c.cc.NewStream(ctx, &NotesService_ServiceDesc.Streams[0], NotesService_Subscribe_FullMethod, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, model.NoteEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
