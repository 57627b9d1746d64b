package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const sessionService = "disa.v1.SessionService"

// SessionServer is the authentication half of the daemon API.
type SessionServer interface {
	GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error)
	RequestOTP(context.Context, *RequestOTPRequest) (*RequestOTPResponse, error)
	SignIn(context.Context, *SignInRequest) (*SignInResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	RotateToken(context.Context, *RotateTokenRequest) (*Empty, error)
	GetMetrics(context.Context, *GetMetricsRequest) (*GetMetricsResponse, error)
	WatchEvents(*WatchEventsRequest, EventStream) error
}

// EventStream is the server side of WatchEvents.
type EventStream interface {
	Send(*Event) error
	Context() context.Context
}

type eventServerStream struct {
	grpc.ServerStream
}

func (s *eventServerStream) Send(e *Event) error { return s.SendMsg(e) }

func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchEventsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SessionServer).WatchEvents(in, &eventServerStream{stream})
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: sessionService,
	HandlerType: (*SessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: unary("/"+sessionService+"/GetStatus", SessionServer.GetStatus)},
		{MethodName: "RequestOTP", Handler: unary("/"+sessionService+"/RequestOTP", SessionServer.RequestOTP)},
		{MethodName: "SignIn", Handler: unary("/"+sessionService+"/SignIn", SessionServer.SignIn)},
		{MethodName: "Logout", Handler: unary("/"+sessionService+"/Logout", SessionServer.Logout)},
		{MethodName: "RotateToken", Handler: unary("/"+sessionService+"/RotateToken", SessionServer.RotateToken)},
		{MethodName: "GetMetrics", Handler: unary("/"+sessionService+"/GetMetrics", SessionServer.GetMetrics)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchEvents", Handler: watchEventsHandler, ServerStreams: true},
	},
	Metadata: "disa/v1/session.proto",
}

// RegisterSessionServer registers srv on s.
func RegisterSessionServer(s grpc.ServiceRegistrar, srv SessionServer) {
	s.RegisterService(&sessionServiceDesc, srv)
}

// SessionClient calls the session service.
type SessionClient struct {
	cc grpc.ClientConnInterface
}

// NewSessionClient creates a session client on cc.
func NewSessionClient(cc grpc.ClientConnInterface) *SessionClient {
	return &SessionClient{cc: cc}
}

func (c *SessionClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error) {
	return invoke[GetStatusResponse](ctx, c.cc, "/"+sessionService+"/GetStatus", in, opts)
}

func (c *SessionClient) RequestOTP(ctx context.Context, in *RequestOTPRequest, opts ...grpc.CallOption) (*RequestOTPResponse, error) {
	return invoke[RequestOTPResponse](ctx, c.cc, "/"+sessionService+"/RequestOTP", in, opts)
}

func (c *SessionClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SignInResponse, error) {
	return invoke[SignInResponse](ctx, c.cc, "/"+sessionService+"/SignIn", in, opts)
}

func (c *SessionClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, "/"+sessionService+"/Logout", in, opts)
}

func (c *SessionClient) RotateToken(ctx context.Context, in *RotateTokenRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "/"+sessionService+"/RotateToken", in, opts)
}

func (c *SessionClient) GetMetrics(ctx context.Context, in *GetMetricsRequest, opts ...grpc.CallOption) (*GetMetricsResponse, error) {
	return invoke[GetMetricsResponse](ctx, c.cc, "/"+sessionService+"/GetMetrics", in, opts)
}

// EventReceiver is the client side of WatchEvents.
type EventReceiver struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event.
func (r *EventReceiver) Recv() (*Event, error) {
	e := new(Event)
	if err := r.stream.RecvMsg(e); err != nil {
		return nil, err
	}
	return e, nil
}

// WatchEvents opens the event stream. Cancel ctx to close it.
func (c *SessionClient) WatchEvents(ctx context.Context, in *WatchEventsRequest, opts ...grpc.CallOption) (*EventReceiver, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &sessionServiceDesc.Streams[0], "/"+sessionService+"/WatchEvents", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventReceiver{stream: stream}, nil
}
