package coercer

import (
	"testing"
	"time"

	"groupstats/domain/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteger(t *testing.T) {
	v, err := Integer{}.Coerce(record.Text("42"))
	require.NoError(t, err)
	assert.Equal(t, record.KindInteger, v.Kind())
	assert.True(t, v.Equal(record.Int(42)))

	_, err = Integer{}.Coerce(record.Text("1,250"))
	assert.Error(t, err)

	v, err = Integer{StripCommas: true}.Coerce(record.Text("1,250"))
	require.NoError(t, err)
	assert.True(t, v.Equal(record.Int(1250)))

	v, err = Integer{}.Coerce(record.Real(-3.9))
	require.NoError(t, err)
	assert.True(t, v.Equal(record.Int(-3)))

	_, err = Integer{}.Coerce(record.Text("abc"))
	assert.Error(t, err)
}

func TestFloat(t *testing.T) {
	v, err := Float{}.Coerce(record.Text("2.5"))
	require.NoError(t, err)
	assert.Equal(t, record.KindReal, v.Kind())
	assert.True(t, v.Equal(record.Real(2.5)))

	v, err = Float{StripPercent: true}.Coerce(record.Text("12.5%"))
	require.NoError(t, err)
	assert.True(t, v.Equal(record.Real(12.5)))

	v, err = Float{}.Coerce(record.Int(7))
	require.NoError(t, err)
	assert.Equal(t, record.KindReal, v.Kind())
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.56", 1234.56},
		{"(200)", -200},
		{"1.234,56 €", 1234.56},
		{"1 234,56", 1234.56},
		{"12,5", 12.5},
		{"1,250", 1250},
		{"USD 99", 99},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Currency{}.Coerce(record.Text(tt.in))
			require.NoError(t, err)
			got, _ := v.Float64()
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := Currency{}.Coerce(record.Text("twelve"))
	assert.Error(t, err)
}

func TestDateTime(t *testing.T) {
	v, err := DateTime{}.Coerce(record.Text("2020-12-16 13:45:00"))
	require.NoError(t, err)
	assert.Equal(t, record.KindDateTime, v.Kind())
	got, _ := v.AsTime()
	assert.Equal(t, time.Date(2020, 12, 16, 13, 45, 0, 0, time.UTC), got)

	v, err = DateTime{Layouts: []string{"02.01.2006"}}.Coerce(record.Text("16.12.2020"))
	require.NoError(t, err)
	got, _ = v.AsTime()
	assert.Equal(t, 2020, got.Year())

	_, err = DateTime{Layouts: []string{"02.01.2006"}}.Coerce(record.Text("2020-12-16"))
	assert.Error(t, err)

	_, err = DateTime{}.Coerce(record.Text("not a date"))
	assert.Error(t, err)
}

func TestDateFromExcelSerial(t *testing.T) {
	// 44181 is 2020-12-16 in the 1900 date system
	v, err := Date{}.Coerce(record.Text("44181"))
	require.NoError(t, err)
	assert.Equal(t, record.KindDate, v.Kind())
	assert.Equal(t, "2020-12-16", v.String())

	v, err = Date{}.Coerce(record.Real(44181.5))
	require.NoError(t, err)
	assert.Equal(t, "2020-12-16", v.String())

	_, err = Date{}.Coerce(record.Int(-1))
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	v, err := Text{}.Coerce(record.Int(5))
	require.NoError(t, err)
	assert.True(t, v.Equal(record.Text("5")))
}

func TestNamed(t *testing.T) {
	for _, name := range Names() {
		c, err := Named(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}

	c, err := Named("percentage")
	require.NoError(t, err)
	v, err := c.Coerce(record.Text("40%"))
	require.NoError(t, err)
	assert.True(t, v.Equal(record.Real(40)))

	_, err = Named("roman")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int_string, float")
}
