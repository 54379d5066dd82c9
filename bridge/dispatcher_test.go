package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// mockTransport records traffic and answers from a canned table.
type mockTransport struct {
	requests      []*jsonrpc.Request
	notifications []*jsonrpc.Notification
	response      *jsonrpc.Response
	err           error
}

func (m *mockTransport) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	m.requests = append(m.requests, request)
	if m.err != nil {
		return nil, m.err
	}
	response := &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: request.Id}
	if m.response != nil {
		response.Result = m.response.Result
		response.Error = m.response.Error
	}
	return response, nil
}

func (m *mockTransport) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	m.notifications = append(m.notifications, notification)
	return m.err
}

func TestHandler_Serve(t *testing.T) {
	testCases := []struct {
		description string
		request     *jsonrpc.Request
		remote      *mockTransport
		forwarded   bool
		expectCode  int
		expectData  string
	}{
		{
			description: "tools/list forwarded verbatim",
			request:     &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: 1, Method: schema.MethodToolsList, Params: json.RawMessage(`{"cursor":"abc"}`)},
			remote:      &mockTransport{response: &jsonrpc.Response{Result: json.RawMessage(`{"tools":[]}`)}},
			forwarded:   true,
			expectData:  `{"tools":[]}`,
		},
		{
			description: "remote error relayed untouched",
			request:     &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: 2, Method: schema.MethodToolsCall, Params: json.RawMessage(`{"name":"x"}`)},
			remote:      &mockTransport{response: &jsonrpc.Response{Error: jsonrpc.NewError(-32001, "tool exploded", nil)}},
			forwarded:   true,
			expectCode:  -32001,
		},
		{
			description: "transport failure surfaces as internal error",
			request:     &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: 3, Method: schema.MethodPing},
			remote:      &mockTransport{err: fmt.Errorf("connection reset")},
			forwarded:   true,
			expectCode:  jsonrpc.InternalError,
		},
		{
			description: "unknown method rejected locally",
			request:     &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: 4, Method: "sampling/createMessage"},
			remote:      &mockTransport{},
			forwarded:   false,
			expectCode:  jsonrpc.MethodNotFound,
		},
		{
			description: "wrong protocol version rejected locally",
			request:     &jsonrpc.Request{Jsonrpc: "1.0", Id: 5, Method: schema.MethodPing},
			remote:      &mockTransport{},
			forwarded:   false,
			expectCode:  jsonrpc.InvalidRequest,
		},
	}

	for _, testCase := range testCases {
		handler := &Handler{remote: testCase.remote, logger: logrus.WithField("test", t.Name())}
		response := &jsonrpc.Response{}
		handler.Serve(context.Background(), testCase.request, response)

		assert.Equal(t, testCase.request.Id, response.Id, testCase.description)
		assert.Equal(t, jsonrpc.Version, response.Jsonrpc, testCase.description)
		if testCase.forwarded {
			require.Len(t, testCase.remote.requests, 1, testCase.description)
			sent := testCase.remote.requests[0]
			assert.Equal(t, testCase.request.Method, sent.Method, testCase.description)
			assert.Equal(t, string(testCase.request.Params), string(sent.Params), testCase.description)
			assert.Equal(t, testCase.request.Id, sent.Id, testCase.description)
		} else {
			assert.Empty(t, testCase.remote.requests, testCase.description)
		}
		if testCase.expectCode != 0 {
			require.NotNil(t, response.Error, testCase.description)
			assert.Equal(t, testCase.expectCode, response.Error.Code, testCase.description)
		} else {
			require.Nil(t, response.Error, testCase.description)
			assert.Equal(t, testCase.expectData, string(response.Result), testCase.description)
		}
	}
}

func TestHandler_AllowedMethods(t *testing.T) {
	remote := &mockTransport{response: &jsonrpc.Response{Result: json.RawMessage(`{}`)}}
	handler := &Handler{remote: remote, logger: logrus.WithField("test", t.Name())}
	methods := []string{
		schema.MethodInitialize,
		schema.MethodPing,
		schema.MethodToolsList,
		schema.MethodToolsCall,
		schema.MethodResourcesList,
		schema.MethodResourcesRead,
		schema.MethodPromptsList,
		schema.MethodPromptsGet,
	}
	for i, method := range methods {
		response := &jsonrpc.Response{}
		handler.Serve(context.Background(), &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: i + 1, Method: method}, response)
		assert.Nil(t, response.Error, method)
	}
	assert.Len(t, remote.requests, len(methods))
}

func TestHandler_OnNotification(t *testing.T) {
	remote := &mockTransport{}
	handler := &Handler{remote: remote, logger: logrus.WithField("test", t.Name())}
	handler.OnNotification(context.Background(), &jsonrpc.Notification{Method: "notifications/initialized"})
	require.Len(t, remote.notifications, 1)
	assert.Equal(t, "notifications/initialized", remote.notifications[0].Method)

	// relay failure is logged, not propagated
	remote.err = fmt.Errorf("gone")
	handler.OnNotification(context.Background(), &jsonrpc.Notification{Method: "notifications/progress"})
}

func TestBackchannel(t *testing.T) {
	channel := &backchannel{}

	// before attachment requests answer method-not-found
	response := &jsonrpc.Response{}
	channel.Serve(context.Background(), &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: 10, Method: "roots/list"}, response)
	require.NotNil(t, response.Error)
	assert.Equal(t, jsonrpc.MethodNotFound, response.Error.Code)

	// notifications before attachment are dropped silently
	channel.OnNotification(context.Background(), &jsonrpc.Notification{Method: "notifications/message"})

	local := &mockTransport{response: &jsonrpc.Response{Result: json.RawMessage(`{"roots":[]}`)}}
	channel.attach(local)

	response = &jsonrpc.Response{}
	channel.Serve(context.Background(), &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: 11, Method: "roots/list"}, response)
	require.Nil(t, response.Error)
	assert.Equal(t, `{"roots":[]}`, string(response.Result))
	require.Len(t, local.requests, 1)

	channel.OnNotification(context.Background(), &jsonrpc.Notification{Method: "notifications/message"})
	assert.Len(t, local.notifications, 1)
}
