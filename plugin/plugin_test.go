package plugin

import (
	"context"
	"testing"

	"github.com/asaidimu/go-colfilter/core/cell"
	"github.com/asaidimu/go-colfilter/core/filter"
	"github.com/asaidimu/go-colfilter/core/persistence"
	"github.com/asaidimu/go-colfilter/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fruitTable(t *testing.T, stateSave bool) *table.Table {
	t.Helper()
	tbl := table.New([]table.ColumnDef{
		{Title: "Fruit", Searchable: true},
		{Title: "Colour", Searchable: true, SearchType: table.SearchSelect},
		{Title: "Tags", Searchable: true, SearchType: table.SearchMultiSelect},
		{Title: "Notes"},
	}, table.Options{ID: "fruits", StateSave: stateSave}, nil)
	require.NoError(t, tbl.AddTextRow("Apple", "red", "sweet", "-"))
	require.NoError(t, tbl.AddTextRow("Banana", "yellow", "soft", "-"))
	require.NoError(t, tbl.AddTextRow("Cherry", "red", "sour", "-"))
	return tbl
}

func TestFiltersOnHeader(t *testing.T) {
	f, err := FiltersOn(context.Background(), fruitTable(t, false), nil)
	require.NoError(t, err)

	header := f.Header()
	require.Len(t, header, 4)
	assert.Equal(t, ControlText, header[0].Kind)
	assert.IsType(t, &cell.TextInput{}, header[0].Control)

	assert.Equal(t, ControlSelect, header[1].Kind)
	assert.Equal(t, []string{"", "red", "yellow"}, header[1].Options)

	assert.Equal(t, ControlMultiSelect, header[2].Kind)
	assert.Equal(t, []string{"soft", "sour", "sweet"}, header[2].Options)

	assert.Equal(t, ControlNone, header[3].Kind)
	assert.Nil(t, header[3].Control)

	assert.Equal(t, DefaultLocalization(), f.Localization())
}

func TestFiltersOnInput(t *testing.T) {
	ctx := context.Background()
	tbl := fruitTable(t, false)
	f, err := FiltersOn(ctx, tbl, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, tbl.Draw())

	t.Run("text input filters by substring", func(t *testing.T) {
		rows, err := f.OnInput(ctx, 0, "AN")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, rows)
		assert.Equal(t, "AN", *f.Header()[0].Control.Value())
	})

	t.Run("clearing the input removes the constraint", func(t *testing.T) {
		rows, err := f.OnInput(ctx, 0, "")
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, rows)
	})

	t.Run("multi select ORs its values", func(t *testing.T) {
		rows, err := f.OnInput(ctx, 2, "sweet", "sour")
		require.NoError(t, err)
		assert.Equal(t, []int{0, 2}, rows)
		assert.True(t, f.State().Spec(2).Equal(filter.Many("sweet", "sour")))
	})

	t.Run("columns are ANDed", func(t *testing.T) {
		rows, err := f.OnInput(ctx, 0, "cher")
		require.NoError(t, err)
		assert.Equal(t, []int{2}, rows)
		assert.False(t, f.Include(0))
		assert.True(t, f.Include(2))
	})

	t.Run("select", func(t *testing.T) {
		rows, err := f.OnInput(ctx, 1, "yellow")
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, "yellow", *f.Header()[1].Control.Value())
	})

	t.Run("clear", func(t *testing.T) {
		rows, err := f.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, rows)
		assert.Nil(t, f.Header()[1].Control.Value())
		assert.Nil(t, f.Header()[2].Control.Value())
		assert.Equal(t, "", *f.Header()[0].Control.Value())
	})

	t.Run("rejects bad columns", func(t *testing.T) {
		_, err := f.OnInput(ctx, 3, "x")
		assert.ErrorIs(t, err, ErrNotSearchable)
		_, err = f.OnInput(ctx, 9, "x")
		assert.ErrorIs(t, err, ErrColumnRange)
		assert.ErrorIs(t, f.SetColumnFilter(-1, filter.Single("x")), ErrColumnRange)
		assert.ErrorIs(t, f.SetColumnFilter(3, filter.Single("x")), ErrNotSearchable)
		assert.Empty(t, f.State().Snapshot())
	})
}

func TestSelectShowsOnlyActiveFilter(t *testing.T) {
	ctx := context.Background()
	f, err := FiltersOn(ctx, fruitTable(t, false), nil)
	require.NoError(t, err)

	_, err = f.OnInput(ctx, 1, "yellow")
	require.NoError(t, err)
	require.Equal(t, "yellow", *f.Header()[1].Control.Value())

	rows, err := f.OnInput(ctx, 1, "re")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rows)
	assert.True(t, f.State().Spec(1).Equal(filter.Single("re")))
	assert.Nil(t, f.Header()[1].Control.Value())
}

func TestFiltersLiveCellControls(t *testing.T) {
	ctx := context.Background()
	status := cell.NewSelect("open", "closed")
	status.Choose("open")

	tbl := table.New([]table.ColumnDef{{Title: "Status", Searchable: true}}, table.Options{ID: "tickets"}, nil)
	require.NoError(t, tbl.AddRow(cell.Bind(status)))
	require.NoError(t, tbl.AddRow(cell.StaticText("closed")))

	f, err := FiltersOn(ctx, tbl, nil)
	require.NoError(t, err)

	rows, err := f.OnInput(ctx, 0, "open")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rows)

	status.Choose("closed")
	assert.Empty(t, tbl.Draw())
}

func TestFiltersStateSave(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()

	f, err := FiltersOn(ctx, fruitTable(t, true), &Options{Store: store})
	require.NoError(t, err)
	_, err = f.OnInput(ctx, 0, "an")
	require.NoError(t, err)
	_, err = f.OnInput(ctx, 2, "soft")
	require.NoError(t, err)

	t.Run("restores specs and controls on reload", func(t *testing.T) {
		tbl := fruitTable(t, true)
		reloaded, err := FiltersOn(ctx, tbl, &Options{Store: store})
		require.NoError(t, err)

		assert.True(t, reloaded.State().Spec(0).Equal(filter.Single("an")))
		assert.Equal(t, "an", *reloaded.Header()[0].Control.Value())
		assert.Equal(t, "soft", *reloaded.Header()[2].Control.Value())
		assert.Equal(t, []int{1}, tbl.Draw())
	})

	t.Run("clear is saved", func(t *testing.T) {
		_, err := f.Clear(ctx)
		require.NoError(t, err)
		specs, ok, err := store.Load(ctx, "fruits")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, specs)
	})

	t.Run("ignored without state save", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "fruits", filter.Specs{0: filter.Single("zzz")}))
		tbl := fruitTable(t, false)
		_, err := FiltersOn(ctx, tbl, &Options{Store: store})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, tbl.Draw())
	})
}

func TestFiltersRestoreDropsStaleColumns(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	require.NoError(t, store.Save(ctx, "fruits", filter.Specs{
		-1: filter.Single("x"),
		0:  filter.Single("an"),
		3:  filter.Single("zzz"),
		7:  filter.Single("x"),
	}))

	tbl := fruitTable(t, true)
	f, err := FiltersOn(ctx, tbl, &Options{Store: store})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, f.State().Snapshot().Constrained())
	assert.Equal(t, []int{1}, tbl.Draw())

	_, err = f.OnInput(ctx, 0, "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, tbl.Draw())

	specs, ok, err := store.Load(ctx, "fruits")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, specs)
}

func TestLocalization(t *testing.T) {
	f, err := FiltersOn(context.Background(), fruitTable(t, false), &Options{
		Localization: &Localization{SelectAllText: "Tout"},
	})
	require.NoError(t, err)
	labels := f.Localization()
	assert.Equal(t, "Tout", labels.SelectAllText)
	assert.Equal(t, DefaultLocalization().DoneButtonText, labels.DoneButtonText)
}
