package trace

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestFromHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-Request-ID", "req-1")
	assert.Equal(t, "req-1", FromHeaders(h.Get))

	h.Set("X-Trace-ID", "trace-1")
	assert.Equal(t, "trace-1", FromHeaders(h.Get))

	generated := FromHeaders(http.Header{}.Get)
	assert.Len(t, generated, 32)
}
