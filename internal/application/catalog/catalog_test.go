package catalog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

const sample = `SKU,Nombre,Categoría,Precio,Stock,Mínimo,Garantia_Meses
pan-156,Pantalla 15.6,refaccion,"1250,50",4,1,6
SW-AV,Antivirus 1 año,SOFTWARE,399,0,0,12
`

func TestParseCSV(t *testing.T) {
	rows, err := catalog.ParseCSV(strings.NewReader(sample), false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "PAN-156", rows[0].SKU)
	assert.Equal(t, entity.CategoryRefaccion, rows[0].Category)
	assert.Equal(t, "1250.5", rows[0].Price.String())
	assert.Equal(t, 4, rows[0].Stock)
	assert.Equal(t, 6, rows[0].WarrantyMonths)
	assert.Equal(t, entity.CategorySoftware, rows[1].Category)
}

func TestParseCSV_Latin1(t *testing.T) {
	enc, err := charmap.ISO8859_1.NewEncoder().String(sample)
	require.NoError(t, err)

	rows, err := catalog.ParseCSV(bytes.NewReader([]byte(enc)), true)
	require.NoError(t, err)
	assert.Equal(t, "Antivirus 1 año", rows[1].Name)
}

func TestParseCSV_ColumnaFaltante(t *testing.T) {
	_, err := catalog.ParseCSV(strings.NewReader("sku,nombre\nA,B\n"), false)
	assert.ErrorContains(t, err, "categoria")
}

func TestImport_CreaConEntradaYOmiteExistentes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	im := catalog.NewImporter(store, &ports.FixedClock{T: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, zerolog.Nop())
	rows, err := catalog.ParseCSV(strings.NewReader(sample), false)
	require.NoError(t, err)

	res, err := im.Import(ctx, "admin-1", rows)
	require.NoError(t, err)
	assert.Equal(t, catalog.Result{Created: 2}, res)

	repos := store.Repos()
	p, err := repos.Products.GetBySKU(ctx, "PAN-156")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 4, p.Stock)
	movs, err := repos.Movements.ListByProduct(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.Equal(t, 4, movs[0].Quantity)

	res, err = im.Import(ctx, "admin-1", rows)
	require.NoError(t, err)
	assert.Equal(t, catalog.Result{Skipped: 2}, res)
}

func TestImport_FilaInvalida(t *testing.T) {
	im := catalog.NewImporter(memory.NewStore(), ports.SystemClock{}, zerolog.Nop())
	_, err := im.Import(context.Background(), "admin-1", []catalog.Row{{SKU: "X", Name: "Y", Stock: -1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
