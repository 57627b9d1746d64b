package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const chatService = "disa.v1.ChatService"

// ChatServer serves the conversation list and per-conversation actions.
type ChatServer interface {
	ListChats(context.Context, *ListChatsRequest) (*ListChatsResponse, error)
	DeleteChat(context.Context, *ChatRequest) (*Empty, error)
	ReportChat(context.Context, *ChatRequest) (*Empty, error)
	ListMembers(context.Context, *ChatRequest) (*ListMembersResponse, error)
	CreateChat(context.Context, *CreateChatRequest) (*CreateChatResponse, error)
	GetTranscript(context.Context, *GetTranscriptRequest) (*GetTranscriptResponse, error)
}

var chatServiceDesc = grpc.ServiceDesc{
	ServiceName: chatService,
	HandlerType: (*ChatServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListChats", Handler: unary("/"+chatService+"/ListChats", ChatServer.ListChats)},
		{MethodName: "DeleteChat", Handler: unary("/"+chatService+"/DeleteChat", ChatServer.DeleteChat)},
		{MethodName: "ReportChat", Handler: unary("/"+chatService+"/ReportChat", ChatServer.ReportChat)},
		{MethodName: "ListMembers", Handler: unary("/"+chatService+"/ListMembers", ChatServer.ListMembers)},
		{MethodName: "CreateChat", Handler: unary("/"+chatService+"/CreateChat", ChatServer.CreateChat)},
		{MethodName: "GetTranscript", Handler: unary("/"+chatService+"/GetTranscript", ChatServer.GetTranscript)},
	},
	Metadata: "disa/v1/chat.proto",
}

// RegisterChatServer registers srv on s.
func RegisterChatServer(s grpc.ServiceRegistrar, srv ChatServer) {
	s.RegisterService(&chatServiceDesc, srv)
}

// ChatClient calls the chat service.
type ChatClient struct {
	cc grpc.ClientConnInterface
}

// NewChatClient creates a chat client on cc.
func NewChatClient(cc grpc.ClientConnInterface) *ChatClient {
	return &ChatClient{cc: cc}
}

func (c *ChatClient) ListChats(ctx context.Context, in *ListChatsRequest, opts ...grpc.CallOption) (*ListChatsResponse, error) {
	return invoke[ListChatsResponse](ctx, c.cc, "/"+chatService+"/ListChats", in, opts)
}

func (c *ChatClient) DeleteChat(ctx context.Context, in *ChatRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "/"+chatService+"/DeleteChat", in, opts)
}

func (c *ChatClient) ReportChat(ctx context.Context, in *ChatRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "/"+chatService+"/ReportChat", in, opts)
}

func (c *ChatClient) ListMembers(ctx context.Context, in *ChatRequest, opts ...grpc.CallOption) (*ListMembersResponse, error) {
	return invoke[ListMembersResponse](ctx, c.cc, "/"+chatService+"/ListMembers", in, opts)
}

func (c *ChatClient) CreateChat(ctx context.Context, in *CreateChatRequest, opts ...grpc.CallOption) (*CreateChatResponse, error) {
	return invoke[CreateChatResponse](ctx, c.cc, "/"+chatService+"/CreateChat", in, opts)
}

func (c *ChatClient) GetTranscript(ctx context.Context, in *GetTranscriptRequest, opts ...grpc.CallOption) (*GetTranscriptResponse, error) {
	return invoke[GetTranscriptResponse](ctx, c.cc, "/"+chatService+"/GetTranscript", in, opts)
}
