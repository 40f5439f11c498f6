package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcFailure struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// newNode starts a fake JSON-RPC node. handle returns either a result or an
// error object for each request.
func newNode(t *testing.T, handle func(req rpcRequest) (interface{}, *rpcFailure)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		result, failure := handle(req)
		if failure != nil {
			resp["error"] = failure
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJSONRPCCallContract(t *testing.T) {
	var gotMethod string
	srv := newNode(t, func(req rpcRequest) (interface{}, *rpcFailure) {
		gotMethod = req.Method
		return "0x0102", nil
	})

	p, err := DialJSONRPC(srv.URL)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, srv.URL, p.Name())

	to := common.HexToAddress("0x1")
	out, err := p.CallContract(context.Background(), ethereum.CallMsg{To: &to, Data: []byte{0x06, 0xfd, 0xde, 0x03}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, out)
	assert.Equal(t, "eth_call", gotMethod)
}

func TestJSONRPCCodeAt(t *testing.T) {
	srv := newNode(t, func(req rpcRequest) (interface{}, *rpcFailure) {
		if req.Method != "eth_getCode" {
			return nil, &rpcFailure{Code: -32601, Message: "method not found"}
		}
		return "0x6080", nil
	})

	p, err := DialJSONRPC(srv.URL)
	require.NoError(t, err)
	defer p.Close()

	code, err := p.CodeAt(context.Background(), common.HexToAddress("0x1"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, code)
}

func TestJSONRPCRevert(t *testing.T) {
	srv := newNode(t, func(req rpcRequest) (interface{}, *rpcFailure) {
		return nil, &rpcFailure{Code: 3, Message: "execution reverted", Data: "0x"}
	})

	p, err := DialJSONRPC(srv.URL)
	require.NoError(t, err)
	defer p.Close()

	to := common.HexToAddress("0x1")
	_, err = p.CallContract(context.Background(), ethereum.CallMsg{To: &to}, nil)
	require.Error(t, err)
	assert.True(t, IsRevert(err))

	var dataErr rpc.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, "0x", dataErr.ErrorData())
}

func TestIsRevert(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("execution reverted"), true},
		{errors.New("execution reverted: Ownable: caller is not the owner"), true},
		{errors.New("rate limited: execution reverted"), false},
		{&rpcError{code: 3, message: "execution reverted"}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRevert(tt.err), "%v", tt.err)
	}
}
