package packed

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := [][]byte{
		nil,
		[]byte("hello\n"),
		[]byte("a"),
		bytes.Repeat([]byte("abcdef"), 10000),
		{0x00, 0xff, 0x28, 0xb5, 0x2f, 0xfd},
	}
	for _, level := range []int{MinLevel, DefaultInlineLevel, DefaultLevel, 11, MaxLevel} {
		for i, payload := range payloads {
			blob, err := Compress(payload, level)
			if err != nil {
				t.Fatalf("Compress(payload %d, level %d): %v", i, level, err)
			}
			got := Decompress(blob)
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip of payload %d at level %d: got %d bytes, want %d", i, level, len(got), len(payload))
			}
		}
	}
}

func TestCompress_LevelBounds(t *testing.T) {
	t.Parallel()

	for _, level := range []int{0, -1, 22, 100} {
		if _, err := Compress([]byte("x"), level); err == nil {
			t.Errorf("Compress at level %d should fail", level)
		}
	}
}

func TestDecompress_ReturnsFreshSlice(t *testing.T) {
	t.Parallel()

	blob, err := Compress([]byte("shared"), DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	first := Decompress(blob)
	first[0] = 'X'
	second := Decompress(blob)
	if second[0] != 's' {
		t.Error("Decompress results should not share backing memory")
	}
}

func TestDecompress_CorruptPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("Decompress of garbage should panic")
		}
	}()
	Decompress([]byte("definitely not a zstd frame"))
}
