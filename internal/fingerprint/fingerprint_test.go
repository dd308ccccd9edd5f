package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/media-luna/fingerprint/internal/fpkind"
	"github.com/media-luna/fingerprint/internal/subfingerprint"
)

func bitsFrom(vals ...bool) subfingerprint.Bits {
	return subfingerprint.Bits(vals)
}

func TestAppendAndAtRoundTrip(t *testing.T) {
	f := New()
	b := bitsFrom(true, false, false, false, true, true)
	require.NoError(t, f.Append(b))

	got := f.At(0)
	require.Equal(t, len(b), len(got))
	for i := range b {
		require.Equal(t, b[i], got[i])
	}
}

func TestAppendFixesLength(t *testing.T) {
	f := New()
	require.NoError(t, f.Append(bitsFrom(true, false, true, false)))
	if f.Length() != 2 {
		t.Fatalf("Length() = %d, want 2", f.Length())
	}

	err := f.Append(bitsFrom(true, false))
	if err == nil {
		t.Fatal("expected ArgumentInvalid for mismatched subfingerprint length")
	}
	if !fpkind.Is(err, fpkind.ArgumentInvalid) {
		t.Fatalf("expected ArgumentInvalid, got %v", err)
	}
}

func TestSelfSimilarityIsOne(t *testing.T) {
	f := New()
	require.NoError(t, f.Append(bitsFrom(true, true, false, false, true, false)))
	require.NoError(t, f.Append(bitsFrom(false, true, true, true, false, false)))

	score, err := f.Similarity(f, 6)
	require.NoError(t, err)
	if score != 1.0 {
		t.Fatalf("self-similarity = %v, want 1.0", score)
	}
}

func TestEqual(t *testing.T) {
	a := New()
	require.NoError(t, a.Append(bitsFrom(true, false)))
	b := a.Copy()
	if !a.Equal(b) {
		t.Fatal("copy should be equal to original")
	}
	require.NoError(t, b.Append(bitsFrom(false, true)))
	if a.Equal(b) {
		t.Fatal("fingerprints with different counts should not be equal")
	}
}

func TestSimilarityZeroRangeIsError(t *testing.T) {
	a := New()
	require.NoError(t, a.Append(bitsFrom(true, false)))
	_, err := a.Similarity(a, 0)
	if !fpkind.Is(err, fpkind.ArgumentInvalid) {
		t.Fatalf("expected ArgumentInvalid for r=0, got %v", err)
	}
}

func TestSimilarityEmptyFingerprintsIsZero(t *testing.T) {
	a, b := New(), New()
	score, err := a.Similarity(b, 4)
	require.NoError(t, err)
	if score != 0 {
		t.Fatalf("similarity of two empty fingerprints = %v, want 0", score)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	f := New()
	require.NoError(t, f.Append(bitsFrom(true, false, false, true, true, true)))
	require.NoError(t, f.Append(bitsFrom(false, false, true, false, false, true)))

	data := f.Bytes()
	got, err := DeserializeBytes(data)
	require.NoError(t, err)

	if !f.Equal(got) {
		t.Fatalf("deserialized fingerprint does not equal original: %+v vs %+v", f, got)
	}
}

func TestSerializeEmptyFingerprint(t *testing.T) {
	f := New()
	data := f.Bytes()
	if len(data) != headerSize {
		t.Fatalf("empty fingerprint should serialize to just the header, got %d bytes", len(data))
	}
	got, err := DeserializeBytes(data)
	require.NoError(t, err)
	if got.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", got.Count())
	}
}

func TestByteSizeMatchesActualOutput(t *testing.T) {
	f := New()
	require.NoError(t, f.Append(bitsFrom(true, false, true, true, false, false)))
	if got, want := f.ByteSize(), len(f.Bytes()); got != want {
		t.Fatalf("ByteSize() = %d, want %d (actual serialized length)", got, want)
	}
}
