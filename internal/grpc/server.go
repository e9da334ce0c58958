package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/sleeper"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "draftaid.DraftAid"

// DraftAidServer is the RPC surface over a draft session
type DraftAidServer interface {
	GetBoard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetDraftID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Summary(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StreamEvents(*emptypb.Empty, grpc.ServerStream) error
}

// Server implements DraftAidServer
type Server struct {
	session *session.Session
	events  pubsub.Bus
}

// NewServer creates a new gRPC server. events may be nil, which disables StreamEvents.
func NewServer(s *session.Session, events pubsub.Bus) *Server {
	return &Server{
		session: s,
		events:  events,
	}
}

// Register attaches the service to gs
func Register(gs *grpc.Server, srv DraftAidServer) {
	gs.RegisterService(&ServiceDesc, srv)
}

// toStatus maps domain errors onto gRPC codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, session.ErrNoRankings):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrNoDraftID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, sleeper.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// toStruct round-trips v through JSON so the wire shape matches the HTTP API
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func field(req *structpb.Struct, name string) *structpb.Value {
	if req == nil {
		return nil
	}
	return req.GetFields()[name]
}

// GetBoard returns {"positions": [...]} with the top n (default 5) per position
func (s *Server) GetBoard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	n := 5
	if v := field(req, "n"); v != nil && v.GetNumberValue() >= 0 {
		n = int(v.GetNumberValue())
	}
	logger.Debug("gRPC: Getting board", "n", n)

	board, err := s.session.Board(n)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"positions": board})
}

// Search returns {"hits": [...]} for the "q" field
func (s *Server) Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hits, err := s.session.Search(field(req, "q").GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"hits": hits})
}

// SetDraftID takes "draftId" as an id or a draft URL
func (s *Server) SetDraftID(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := field(req, "draftId").GetStringValue()
	logger.Info("gRPC: Setting draft id", "raw", raw)

	id, err := s.session.SetDraftID(ctx, raw)
	if err != nil {
		logger.Error("gRPC: Failed to set draft id", "error", err)
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"draftId": id})
}

func (s *Server) Refresh(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	res, err := s.session.Refresh(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (s *Server) Summary(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.session.Summary())
}

// StreamEvents streams board events until the client goes away
func (s *Server) StreamEvents(_ *emptypb.Empty, stream grpc.ServerStream) error {
	if s.events == nil {
		return status.Error(codes.Unavailable, "events not configured")
	}
	logger.Debug("gRPC: New client connected to event stream")
	eventChan := s.events.Subscribe()
	defer s.events.Unsubscribe(eventChan)

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}
			msg, err := toStruct(event)
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				logger.Error("gRPC: Failed to send event to stream", "error", err)
				return err
			}
		case <-stream.Context().Done():
			logger.Debug("gRPC: Client disconnected from event stream")
			return nil
		}
	}
}

func unaryHandler[Req any](method string, call func(DraftAidServer, context.Context, *Req) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DraftAidServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fmt.Sprintf("/%s/%s", ServiceName, method),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(DraftAidServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes draftaid.DraftAid. Messages are well-known types, so no
// generated code is needed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DraftAidServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("GetBoard", DraftAidServer.GetBoard),
		unaryHandler("Search", DraftAidServer.Search),
		unaryHandler("SetDraftID", DraftAidServer.SetDraftID),
		unaryHandler("Refresh", DraftAidServer.Refresh),
		unaryHandler("Summary", DraftAidServer.Summary),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamEvents",
			ServerStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				in := new(emptypb.Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(DraftAidServer).StreamEvents(in, stream)
			},
		},
	},
	Metadata: "draftaid.proto",
}
