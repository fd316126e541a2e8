package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/guessword/internal/testutil"
)

type ClientSuite struct {
	suite.Suite
	calls   atomic.Int32
	handler http.HandlerFunc
	server  *httptest.Server
	client  *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.calls.Store(0)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.handler(w, r)
	}))
	s.client = New(Config{
		BaseURL:       s.server.URL + "/v1/",
		APIKey:        "test-key",
		Model:         "test-model",
		Timeout:       time.Second,
		MaxRetries:    1,
		RetryInterval: time.Millisecond,
	}, testutil.NopLogger())
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func (s *ClientSuite) TestComplete() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/v1/chat/completions", r.URL.Path)
		s.Equal("Bearer test-key", r.Header.Get("Authorization"))

		var req completionRequest
		s.NoError(json.NewDecoder(r.Body).Decode(&req))
		s.Equal("test-model", req.Model)
		if s.Len(req.Messages, 2) {
			s.Equal(Message{Role: "system", Content: "be terse"}, req.Messages[0])
			s.Equal(Message{Role: "user", Content: "Is it big?"}, req.Messages[1])
		}

		reply(w, "  Yes \n")
	}

	text, err := s.client.Complete(context.Background(), "be terse", "Is it big?")
	s.Require().NoError(err)
	s.Equal("Yes", text)
	s.Equal(int32(1), s.calls.Load())
}

func (s *ClientSuite) TestRetriesOnceOnServerError() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		if s.calls.Load() == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		reply(w, "no")
	}

	text, err := s.client.Complete(context.Background(), "", "q")
	s.Require().NoError(err)
	s.Equal("no", text)
	s.Equal(int32(2), s.calls.Load())
}

func (s *ClientSuite) TestGivesUpAfterOneRetry() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}

	_, err := s.client.Complete(context.Background(), "", "q")
	s.Require().Error(err)

	var statusErr *StatusError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(http.StatusInternalServerError, statusErr.StatusCode)
	s.Equal(int32(2), s.calls.Load())
}

func (s *ClientSuite) TestDoesNotRetryClientError() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}

	_, err := s.client.Complete(context.Background(), "", "q")
	s.Require().Error(err)
	s.Equal(int32(1), s.calls.Load())
}

func (s *ClientSuite) TestEmptyCompletion() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		reply(w, "   ")
	}

	_, err := s.client.Complete(context.Background(), "", "q")
	s.ErrorIs(err, ErrEmptyCompletion)
	s.Equal(int32(1), s.calls.Load())
}

func (s *ClientSuite) TestAttemptTimeout() {
	s.client.cfg.Timeout = 20 * time.Millisecond
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}

	_, err := s.client.Complete(context.Background(), "", "q")
	s.Require().Error(err)
	s.Equal(int32(2), s.calls.Load())
}
