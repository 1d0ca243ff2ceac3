package audio

import "errors"

var (
	ErrNotWavFile       = errors.New("not a RIFF/WAVE file")
	ErrMissingFmtChunk  = errors.New("fmt chunk not found")
	ErrMissingDataChunk = errors.New("data chunk not found")
	ErrTruncatedChunk   = errors.New("chunk is truncated")
	ErrUnsupportedCodec = errors.New("only PCM 16-bit and IEEE float 32-bit are supported")
	ErrEmptyData        = errors.New("data chunk holds no frames")

	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidCommand = errors.New("invalid command arguments")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrInvalidPatch   = errors.New("invalid patch")
)
