package readme_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anivanovic/codestats/pkg/readme"
	"github.com/anivanovic/codestats/pkg/statserr"
)

func TestSplice(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		block   string
		want    string
		wantErr bool
	}{
		{
			name:  "replaces section",
			doc:   "A<!--S-->OLD<!--S-->B",
			block: "NEW",
			want:  "A<!--S-->\nNEW\n<!--S-->B",
		},
		{
			name:  "empty section",
			doc:   "<!--S--><!--S-->",
			block: "NEW",
			want:  "<!--S-->\nNEW\n<!--S-->",
		},
		{
			name:  "empty block",
			doc:   "# me\n<!--S-->\nold\n<!--S-->\nfooter",
			block: "",
			want:  "# me\n<!--S-->\n\n<!--S-->\nfooter",
		},
		{
			name:    "single marker",
			doc:     "A<!--S-->B",
			block:   "NEW",
			wantErr: true,
		},
		{
			name:    "no marker",
			doc:     "AB",
			block:   "NEW",
			wantErr: true,
		},
		{
			name:    "three markers",
			doc:     "A<!--S-->1<!--S-->2<!--S-->B",
			block:   "NEW",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := readme.Splice(tt.doc, "<!--S-->", tt.block)
			if tt.wantErr {
				assert.ErrorIs(t, err, statserr.ErrSentinel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplice_EmptyMarker(t *testing.T) {
	_, err := readme.Splice("doc", "", "block")
	assert.ErrorIs(t, err, statserr.ErrSentinel)
}

func TestSplice_Idempotent(t *testing.T) {
	first, err := readme.Splice("A<!--S-->OLD<!--S-->B", "<!--S-->", "NEW")
	require.NoError(t, err)
	second, err := readme.Splice(first, "<!--S-->", "NEW")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSection(t *testing.T) {
	s, err := readme.Section("A<!--S-->\nNEW\n<!--S-->B", "<!--S-->")
	require.NoError(t, err)
	assert.Equal(t, "\nNEW\n", s)

	_, err = readme.Section("A<!--S-->B", "<!--S-->")
	assert.ErrorIs(t, err, statserr.ErrSentinel)
}
