package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	calls  int
	inputs [][]*schema.Message
	reply  *schema.Message
	err    error
}

func (f *fakeChat) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	f.inputs = append(f.inputs, input)
	return f.reply, f.err
}

func TestCompleteUnauthenticated(t *testing.T) {
	var s *Session
	_, err := s.Complete(context.Background(), "test")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	var remote *RemoteError
	assert.False(t, errors.As(err, &remote))
}

func TestCompleteZeroSessionMakesNoCalls(t *testing.T) {
	s := &Session{}
	_, err := s.Complete(context.Background(), "test")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthenticateRequiresKey(t *testing.T) {
	s, err := Authenticate(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Nil(t, s)
}

func TestAuthenticateDefaults(t *testing.T) {
	s, err := Authenticate(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.Model())
}

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	chat := &fakeChat{reply: schema.AssistantMessage("Gross margin is 40%", nil)}
	s := NewSession(chat, "gpt-test")

	got, err := s.Complete(context.Background(), "Analyze this")
	require.NoError(t, err)
	assert.Equal(t, "Gross margin is 40%", got)

	require.Equal(t, 1, chat.calls)
	require.Len(t, chat.inputs[0], 1)
	assert.Equal(t, schema.User, chat.inputs[0][0].Role)
	assert.Equal(t, "Analyze this", chat.inputs[0][0].Content)
}

func TestCompleteRemoteError(t *testing.T) {
	cause := errors.New("429 Too Many Requests: quota exceeded")
	chat := &fakeChat{err: cause}
	s := NewSession(chat, "gpt-test")

	_, err := s.Complete(context.Background(), "prompt")

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
	assert.Equal(t, 1, chat.calls)
}

func TestCompleteNilResponse(t *testing.T) {
	s := NewSession(&fakeChat{}, "gpt-test")

	_, err := s.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
