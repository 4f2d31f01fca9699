package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentQuery(t *testing.T) {
	d := NewClusterDocument()

	t.Run("should find node by id", func(t *testing.T) {
		n, ok := d.Query("#fuel-bar")
		require.True(t, ok)
		assert.Equal(t, "fuel-bar", n.ID())
	})
	t.Run("should find first node by class", func(t *testing.T) {
		n, ok := d.Query(".speed-unit")
		require.True(t, ok)
		assert.Equal(t, "speed-gauge/speed-unit", n.Key())
		assert.Equal(t, "KMH", n.State().Text)
	})
	t.Run("should find descendant glyph of an icon", func(t *testing.T) {
		n, ok := d.Query("#lock-icon .icon-symbol")
		require.True(t, ok)
		assert.Equal(t, "lock-icon/icon-symbol", n.Key())
	})
	t.Run("should not find unknown targets", func(t *testing.T) {
		for _, sel := range []string{"#nope", ".nope", "#speed .icon-symbol", "", "a b c"} {
			_, ok := d.Query(sel)
			assert.False(t, ok, sel)
		}
	})
	t.Run("should return no element for unknown selector", func(t *testing.T) {
		el, ok := d.Element("#indicators")
		assert.False(t, ok)
		assert.Nil(t, el)
	})
}

func TestDocumentMutations(t *testing.T) {
	t.Run("should report changes once per actual mutation", func(t *testing.T) {
		d := NewClusterDocument()
		var changes []Change
		d.OnChange(func(c Change) {
			changes = append(changes, c)
		})
		n, _ := d.Node(IDEngineIcon)

		n.AddClass("active")
		n.AddClass("active")
		n.RemoveClass("active")
		n.RemoveClass("active")
		n.SetText("x")
		n.SetText("x")
		n.SetStyle("width", "10%")
		n.SetStyle("width", "10%")
		n.SetStyle("width", "20%")

		assert.Equal(t, []Change{
			{Key: IDEngineIcon, Kind: ChangeClass},
			{Key: IDEngineIcon, Kind: ChangeClass},
			{Key: IDEngineIcon, Kind: ChangeText},
			{Key: IDEngineIcon, Kind: ChangeStyle},
			{Key: IDEngineIcon, Kind: ChangeStyle},
		}, changes)
	})
	t.Run("should keep styles in first-set order", func(t *testing.T) {
		d := NewClusterDocument()
		n, _ := d.Node(IDFuelBar)
		n.SetStyle("width", "20%")
		n.SetStyle("background", "red")
		n.SetStyle("width", "30%")

		s := n.State()
		assert.Equal(t, "width: 30%; background: red", s.StyleString())
		assert.Equal(t, "red", s.Style("background"))
		assert.Equal(t, "", s.Style("color"))
	})
	t.Run("should sort classes in snapshots", func(t *testing.T) {
		d := NewClusterDocument()
		n, _ := d.Node(IDSeatbeltIcon)
		n.AddClass("warning")

		s, ok := d.Snapshot(IDSeatbeltIcon)
		require.True(t, ok)
		assert.Equal(t, "status-icon warning", s.ClassString())
		assert.True(t, s.HasClass("warning"))
	})
}

func TestDocumentRemove(t *testing.T) {
	d := NewClusterDocument()

	assert.True(t, d.Remove(IDStatusIcons))
	assert.False(t, d.Remove(IDStatusIcons))

	_, ok := d.Node(IDLockIcon)
	assert.False(t, ok)
	_, ok = d.Query("#lock-icon .icon-symbol")
	assert.False(t, ok)
	_, ok = d.Query("#speed")
	assert.True(t, ok)
}

func TestSnapshotsAreInDocumentOrder(t *testing.T) {
	d := NewClusterDocument()
	states := d.Snapshots()
	require.NotEmpty(t, states)
	assert.Equal(t, IDSpeedGauge, states[0].Key)
	assert.Equal(t, IDSpeedNeedle, states[1].Key)
	assert.Equal(t, "lock-icon/icon-symbol", states[len(states)-1].Key)
}
