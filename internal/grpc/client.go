package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a running draftaid.DraftAid service
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects without TLS; the service is meant for localhost and cluster use
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) invoke(ctx context.Context, method string, in interface{}) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBoard(ctx context.Context, n int) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"n": n})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "GetBoard", req)
}

func (c *Client) Search(ctx context.Context, q string) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"q": q})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "Search", req)
}

func (c *Client) SetDraftID(ctx context.Context, draftID string) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"draftId": draftID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "SetDraftID", req)
}

func (c *Client) Refresh(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "Refresh", &emptypb.Empty{})
}

func (c *Client) Summary(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "Summary", &emptypb.Empty{})
}

// StreamEvents delivers events to fn until ctx ends or fn returns an error
func (c *Client) StreamEvents(ctx context.Context, fn func(*structpb.Struct) error) error {
	desc := &ServiceDesc.Streams[0]
	stream, err := c.conn.NewStream(ctx, desc, "/"+ServiceName+"/"+desc.StreamName)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			return err
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
