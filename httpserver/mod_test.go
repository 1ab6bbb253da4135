package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcmul/peer"
	"go.dedis.ch/mpcmul/peer/impl"
	"go.dedis.ch/mpcmul/registry/standard"
	"go.dedis.ch/mpcmul/transport/channel"
	"go.dedis.ch/mpcmul/types"
)

func newSoloPeer(t *testing.T, manual bool) peer.Peer {
	sock, err := channel.NewTransport().CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })

	p, err := impl.NewPeer(peer.Configuration{
		Socket:          sock,
		MessageRegistry: standard.NewRegistry(),
		Identity:        "solo",
		Participants:    1,
		Threshold:       0,
		ManualAdvance:   manual,
	})
	require.NoError(t, err)

	return p
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func Test_HTTP_Input_And_Result(t *testing.T) {
	h := NewServer(newSoloPeer(t, false)).Handler()

	rec := do(t, h, http.MethodGet, "/result", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/input", InputRequest{Values: []uint64{6, 7}})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodPost, "/input", InputRequest{Values: []uint64{43}})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/result", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res ResultResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Equal(t, uint64(42), res.Value)
	require.Equal(t, uint64(peer.DefaultModulus), res.Modulus)

	rec = do(t, h, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status types.MPCStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	require.Equal(t, "solo", status.Identity)
	require.Equal(t, "42", status.Result)
	require.Equal(t, []string{"6", "7"}, status.OwnInputs)
	require.Equal(t, 2, status.InputCount)

	rec = do(t, h, http.MethodPost, "/input", InputRequest{})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func Test_HTTP_Advance(t *testing.T) {
	h := NewServer(newSoloPeer(t, true)).Handler()

	rec := do(t, h, http.MethodPost, "/advance", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodPost, "/input", InputRequest{Values: []uint64{7}})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodPost, "/advance", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodPost, "/advance", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func Test_HTTP_Bad_Request_And_Metrics(t *testing.T) {
	s := NewServer(newSoloPeer(t, false))
	h := s.Handler()

	req := httptest.NewRequest(http.MethodPost, "/input", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/participants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `["solo"]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	addr, err := s.Start("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/participants")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
