package gochunk_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/MasterOfBinary/gochunk"
)

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Field: "ChunkSize", Reason: "must be positive, got 0"}
	assert.Equal(t, "invalid configuration: ChunkSize: must be positive, got 0", err.Error())
}

func TestChunkError_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := &ChunkError{Index: 3, Err: cause}

	assert.Equal(t, "chunk 3: boom", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestChunkError_WrappedSentinelSurvives(t *testing.T) {
	sentinel := errors.New("not found")
	err := &ChunkError{Index: 0, Err: fmt.Errorf("lookup: %w", sentinel)}

	assert.True(t, errors.Is(err, sentinel))

	var chunkErr *ChunkError
	require.ErrorAs(t, error(err), &chunkErr)
	assert.Equal(t, 0, chunkErr.Index)
}

func TestTimeoutError_Message(t *testing.T) {
	err := &TimeoutError{Index: 2, Timeout: 50 * time.Millisecond}
	assert.Equal(t, "chunk 2: timed out after 50ms", err.Error())
}
