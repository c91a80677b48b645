package testkit

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersGenerator_Deterministic(t *testing.T) {
	config := DefaultOrdersConfig()
	config.CustomerCount = 10

	a := NewOrdersGenerator(config).Rows()
	b := NewOrdersGenerator(config).Rows()
	assert.Equal(t, a, b)

	config.Seed = 7
	c := NewOrdersGenerator(config).Rows()
	assert.NotEqual(t, a, c)
}

func TestOrdersGenerator_Shape(t *testing.T) {
	config := DefaultOrdersConfig()
	config.CustomerCount = 20
	config.MissingRate = 0

	rows := NewOrdersGenerator(config).Rows()
	require.Greater(t, len(rows), 20)
	assert.Equal(t, OrdersHeader, rows[0])

	for _, row := range rows[1:] {
		require.Len(t, row, len(OrdersHeader))
		d, err := time.Parse("2006-01-02", row[4])
		require.NoError(t, err)
		assert.False(t, d.Before(config.StartDate.Truncate(24*time.Hour)))
		assert.NotEqual(t, "N/A", row[5])
	}
}

func TestWriteFixtures(t *testing.T) {
	path := WriteCSVWithBOM(t, "bom.csv", [][]string{{"a"}, {"1"}})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, data[:3])

	xlsx := WriteWorkbook(t, "orders.xlsx", [][]any{{"a", "b"}, {1, nil}})
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
