package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const messageService = "disa.v1.MessageService"

// MessageServer serves message threads.
type MessageServer interface {
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
}

var messageServiceDesc = grpc.ServiceDesc{
	ServiceName: messageService,
	HandlerType: (*MessageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListMessages", Handler: unary("/"+messageService+"/ListMessages", MessageServer.ListMessages)},
		{MethodName: "SendMessage", Handler: unary("/"+messageService+"/SendMessage", MessageServer.SendMessage)},
	},
	Metadata: "disa/v1/message.proto",
}

// RegisterMessageServer registers srv on s.
func RegisterMessageServer(s grpc.ServiceRegistrar, srv MessageServer) {
	s.RegisterService(&messageServiceDesc, srv)
}

// MessageClient calls the message service.
type MessageClient struct {
	cc grpc.ClientConnInterface
}

// NewMessageClient creates a message client on cc.
func NewMessageClient(cc grpc.ClientConnInterface) *MessageClient {
	return &MessageClient{cc: cc}
}

func (c *MessageClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, "/"+messageService+"/ListMessages", in, opts)
}

func (c *MessageClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, "/"+messageService+"/SendMessage", in, opts)
}
