package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/pkg/textnorm"
)

// columns encabezado esperado (el orden puede variar; se ignoran acentos y mayúsculas).
var columns = []string{"sku", "nombre", "categoria", "precio", "stock", "minimo", "garantia_meses"}

// ParseCSV lee el catálogo exportado de hoja de cálculo. Con latin1 el archivo se
// decodifica desde ISO-8859-1 (exportación típica de Excel en español).
func ParseCSV(r io.Reader, latin1 bool) ([]Row, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[textnorm.Fold(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row, err := parseRow(get)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func parseRow(get func(string) string) (Row, error) {
	price, err := decimal.NewFromString(orZero(strings.ReplaceAll(get("precio"), ",", ".")))
	if err != nil {
		return Row{}, fmt.Errorf("precio: %w", err)
	}
	ints := map[string]int{}
	for _, col := range []string{"stock", "minimo", "garantia_meses"} {
		n, err := strconv.Atoi(orZero(get(col)))
		if err != nil {
			return Row{}, fmt.Errorf("%s: %w", col, err)
		}
		ints[col] = n
	}
	return Row{
		SKU:            strings.ToUpper(get("sku")),
		Name:           get("nombre"),
		Category:       canonicalCategory(get("categoria")),
		Price:          price,
		Stock:          ints["stock"],
		MinStock:       ints["minimo"],
		WarrantyMonths: ints["garantia_meses"],
	}, nil
}

// canonicalCategory normaliza "refaccion", "SERVICIO", etc. a la forma canónica.
func canonicalCategory(s string) string {
	for _, c := range []string{entity.CategoryRefaccion, entity.CategoryAccesorio, entity.CategoryEquipo, entity.CategorySoftware, entity.CategoryServicio} {
		if textnorm.Equal(c, s) {
			return c
		}
	}
	return s
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
