package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	d, err := New("prod-1", Proposal{Title: strPtr("New Title")}, Snapshot{Title: "Old"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, "prod-1", d.ProductID)
	assert.Equal(t, "New Title", *d.Title)
	assert.Nil(t, d.Description)
	assert.Equal(t, "Old", d.Original.Title)
}

func TestNew_RequiresProductID(t *testing.T) {
	_, err := New("", Proposal{}, Snapshot{})
	assert.ErrorIs(t, err, ErrInvalidProductID)
}

func TestMerge_NilFieldsDoNotOverwrite(t *testing.T) {
	d, _ := New("prod-1", Proposal{Title: strPtr("X")}, Snapshot{})

	require.NoError(t, d.Merge(Proposal{Description: strPtr("Y")}))

	assert.Equal(t, "X", *d.Title)
	assert.Equal(t, "Y", *d.Description)

	// A later merge without a description keeps the existing one.
	require.NoError(t, d.Merge(Proposal{Title: strPtr("X2")}))
	assert.Equal(t, "X2", *d.Title)
	assert.Equal(t, "Y", *d.Description)
}

func TestMerge_Images(t *testing.T) {
	d, _ := New("prod-1", Proposal{Images: []string{"a.jpg"}}, Snapshot{})
	require.NoError(t, d.Merge(Proposal{Images: []string{"b.jpg", "c.jpg"}}))
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, d.Images)

	// Empty image list is "no opinion", not "clear".
	require.NoError(t, d.Merge(Proposal{Title: strPtr("T")}))
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, d.Images)
}

func TestMerge_RejectedOnNonPending(t *testing.T) {
	d, _ := New("prod-1", Proposal{Title: strPtr("X")}, Snapshot{})
	require.NoError(t, d.Reject("reviewer-1"))

	err := d.Merge(Proposal{Title: strPtr("Y")})
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, "X", *d.Title)
}

func TestApprove_FullAndPartial(t *testing.T) {
	d, _ := New("prod-1", Proposal{Title: strPtr("X")}, Snapshot{})
	require.NoError(t, d.Approve("reviewer-1", true))
	assert.Equal(t, StatusApproved, d.Status)
	assert.Equal(t, "reviewer-1", d.ReviewedBy)
	assert.NotNil(t, d.ReviewedAt)

	d2, _ := New("prod-2", Proposal{Title: strPtr("X")}, Snapshot{})
	require.NoError(t, d2.Approve("reviewer-1", false))
	assert.Equal(t, StatusPartial, d2.Status)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	for _, terminal := range []Status{StatusApproved, StatusPartial, StatusRejected} {
		d, _ := New("prod-1", Proposal{Title: strPtr("X")}, Snapshot{})
		switch terminal {
		case StatusApproved:
			require.NoError(t, d.Approve("r", true))
		case StatusPartial:
			require.NoError(t, d.Approve("r", false))
		case StatusRejected:
			require.NoError(t, d.Reject("r"))
		}

		assert.ErrorIs(t, d.Approve("r2", true), ErrTerminalState, "approve after %s", terminal)
		assert.ErrorIs(t, d.Reject("r2"), ErrTerminalState, "reject after %s", terminal)
		assert.Equal(t, terminal, d.Status)
	}
}

func TestSnapshot_HasExistingContent(t *testing.T) {
	assert.False(t, Snapshot{}.HasExistingContent())
	assert.True(t, Snapshot{Description: "text"}.HasExistingContent())
	assert.True(t, Snapshot{Images: []string{"a.jpg"}}.HasExistingContent())
	// Title alone does not count as protected content.
	assert.False(t, Snapshot{Title: "T"}.HasExistingContent())
}
