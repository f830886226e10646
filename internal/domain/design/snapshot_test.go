//go:build unit

package design_test

import (
	"testing"

	"seatwise/internal/domain/design"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPublishedDesign(t *testing.T, sections []design.Section) *design.SeatingDesign {
	t.Helper()
	d, err := design.NewSeatingDesign(uuid.New(), "main hall", 1200, 800)
	require.NoError(t, err)
	require.NoError(t, d.ReplaceSections(sections))
	require.NoError(t, d.Publish())
	return d
}

func twoRowSections() []design.Section {
	return []design.Section{
		{
			Code: "A",
			Name: "Orchestra",
			Rows: []design.Row{
				{Label: "1", Seats: []design.SeatNode{
					{UID: "A-1-1", Number: "1", X: 10, Y: 10},
					{UID: "A-1-2", Number: "2", X: 20, Y: 10},
				}},
				{Label: "2", Seats: []design.SeatNode{
					{UID: "A-2-1", Number: "1", X: 10, Y: 20, Unusable: true},
				}},
			},
		},
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("is deterministic for the same design version", func(t *testing.T) {
		d := newPublishedDesign(t, twoRowSections())

		first, err := design.Snapshot(d)
		require.NoError(t, err)
		second, err := design.Snapshot(d)
		require.NoError(t, err)

		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, d.ID(), first.DesignID)
		assert.Equal(t, d.Version(), first.DesignVersion)
		assert.Equal(t, 3, first.SeatCount())
	})

	t.Run("shares no memory with the design", func(t *testing.T) {
		d := newPublishedDesign(t, twoRowSections())

		tree, err := design.Snapshot(d)
		require.NoError(t, err)

		edited := twoRowSections()
		edited[0].Rows[0].Seats[0].UID = "A-1-99"
		require.NoError(t, d.ReplaceSections(edited))

		assert.Equal(t, "A-1-1", tree.Sections[0].Rows[0].Seats[0].UID)
		assert.NotEqual(t, d.Version(), tree.DesignVersion)
	})

	t.Run("rejects an unpublished design", func(t *testing.T) {
		d, err := design.NewSeatingDesign(uuid.New(), "main hall", 1200, 800)
		require.NoError(t, err)
		require.NoError(t, d.ReplaceSections(twoRowSections()))

		_, err = design.Snapshot(d)
		assert.ErrorIs(t, err, design.ErrInvalidDesign)
	})

	t.Run("rejects an empty tree", func(t *testing.T) {
		d, err := design.NewSeatingDesign(uuid.New(), "main hall", 1200, 800)
		require.NoError(t, err)
		require.NoError(t, d.Publish())

		_, err = design.Snapshot(d)
		assert.ErrorIs(t, err, design.ErrInvalidDesign)
	})

	t.Run("rejects duplicate seat uids", func(t *testing.T) {
		sections := twoRowSections()
		sections[0].Rows[1].Seats[0].UID = "A-1-1"
		d := newPublishedDesign(t, sections)

		_, err := design.Snapshot(d)
		assert.ErrorIs(t, err, design.ErrInvalidDesign)
	})

	t.Run("rejects a seat node without a uid", func(t *testing.T) {
		sections := twoRowSections()
		sections[0].Rows[0].Seats[1].UID = ""
		d := newPublishedDesign(t, sections)

		_, err := design.Snapshot(d)
		assert.ErrorIs(t, err, design.ErrInvalidDesign)
	})
}

func TestGeometryTreeSeats(t *testing.T) {
	t.Run("walks seats in authored order", func(t *testing.T) {
		d := newPublishedDesign(t, twoRowSections())
		tree, err := design.Snapshot(d)
		require.NoError(t, err)

		var uids []string
		tree.Seats(func(_ design.Section, _ design.Row, seat design.SeatNode) {
			uids = append(uids, seat.UID)
		})
		assert.Equal(t, []string{"A-1-1", "A-1-2", "A-2-1"}, uids)
	})
}
