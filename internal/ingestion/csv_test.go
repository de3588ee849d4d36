package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/types"
)

const priceCSV = `product_id;product_name;product_category;brand;package_quantity;package_unit;price;currency
P001;lapte zuzu;lactate;Zuzu;1;l;9.90;RON
P002;iaurt grecesc;lactate;Olympus;0,4;kg;11,5;RON

P003;broken;lactate;X;1;kg;abc;RON
P004;negative;lactate;X;1;kg;-1;RON
`

func priceInfo() FileInfo {
	info, err := ParseFileName("lidl_2025-05-01.csv")
	if err != nil {
		panic(err)
	}
	return info
}

func TestParseCSVPrices(t *testing.T) {
	result, err := ParseCSV([]byte(priceCSV), priceInfo(), EncodingAuto)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Len(t, result.Errors, 2)
	assert.Empty(t, result.Warnings)

	require.Len(t, result.Prices, 2)
	p := result.Prices[1]
	assert.Equal(t, "P002", p.ProductID)
	assert.Equal(t, "iaurt grecesc", p.ProductName)
	assert.Equal(t, "lactate", p.Category)
	assert.Equal(t, "Olympus", p.Brand)
	assert.Equal(t, 0.4, p.PackageQuantity)
	assert.Equal(t, "kg", p.PackageUnit)
	assert.Equal(t, 11.5, p.Price)
	assert.Equal(t, "RON", p.Currency)
	assert.Equal(t, "lidl", p.StoreName)
	assert.Equal(t, "2025-05-01", p.Date.Format(types.DateLayout))

	require.NotNil(t, result.Errors[0].RowNumber)
	assert.Equal(t, 5, *result.Errors[0].RowNumber)
	assert.Equal(t, "price", *result.Errors[0].Field)
	assert.Equal(t, "abc", *result.Errors[0].OriginalValue)
}

func TestParseCSVDiscounts(t *testing.T) {
	content := `product_id;product_name;brand;package_quantity;package_unit;product_category;from_date;to_date;percentage_of_discount
P001;lapte zuzu;Zuzu;1;l;lactate;2025-05-01;2025-05-07;10
P002;paine;Vel Pitar;500;g;panificatie;2025-05-07;2025-05-01;15
P003;oua;Ferma;10;buc;oua;2025-05-01;2025-05-07;150
P004;unt;Napolact;200;g;lactate;2025/05/01;2025-05-07;20
`
	info, err := ParseFileName("kaufland_discounts_2025-05-01.csv")
	require.NoError(t, err)

	result, err := ParseCSV([]byte(content), info, EncodingAuto)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	require.Len(t, result.Discounts, 1)

	d := result.Discounts[0]
	assert.Equal(t, "P001", d.ProductID)
	assert.Equal(t, "kaufland", d.StoreName)
	assert.Equal(t, 10.0, d.PercentageOfDiscount)
	assert.Equal(t, "2025-05-01", d.StartDate.Format(types.DateLayout))
	assert.Equal(t, "2025-05-07", d.EndingDate.Format(types.DateLayout))

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, *e.Field)
	}
	assert.Equal(t, []string{"to_date", "percentage_of_discount", "from_date"}, fields)
}

func TestParseCSVCommaDelimiterAndReorderedHeader(t *testing.T) {
	content := "price,product_id,product_name,product_category,brand,package_quantity,package_unit,currency\n" +
		"3.2,P9,\"paine, feliata\",panificatie,Vel Pitar,0.5,kg,RON\n"

	result, err := ParseCSV([]byte(content), priceInfo(), EncodingAuto)
	require.NoError(t, err)

	require.Len(t, result.Prices, 1)
	assert.Equal(t, "P9", result.Prices[0].ProductID)
	assert.Equal(t, "paine, feliata", result.Prices[0].ProductName)
	assert.Equal(t, 3.2, result.Prices[0].Price)
}

func TestParseCSVRejectsZeroPrice(t *testing.T) {
	content := "product_id;product_name;product_category;brand;package_quantity;package_unit;price;currency\n" +
		"P1;lapte;lactate;Zuzu;1;l;0,00;RON\n"

	result, err := ParseCSV([]byte(content), priceInfo(), EncodingAuto)
	require.NoError(t, err)

	assert.Empty(t, result.Prices)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "price", *result.Errors[0].Field)
	assert.Equal(t, "must be positive", result.Errors[0].Message)
}

func TestParseCSVPositionalFallback(t *testing.T) {
	content := "id;nume;categorie;marca;cantitate;unitate;pret;moneda\nP1;lapte;lactate;Zuzu;1;l;9.9;RON\n"

	result, err := ParseCSV([]byte(content), priceInfo(), EncodingAuto)
	require.NoError(t, err)

	require.Len(t, result.Prices, 1)
	assert.Equal(t, 9.9, result.Prices[0].Price)
	assert.Len(t, result.Warnings, 1)
}

func TestParseCSVWindows1250(t *testing.T) {
	content := []byte("product_id;product_name;product_category;brand;package_quantity;package_unit;price;currency\n" +
		"P1;m\xe3rar;legume;Gr\xe3dina;1;leg\xe3tur\xe3;2.5;RON\n")

	result, err := ParseCSV(content, priceInfo(), EncodingAuto)
	require.NoError(t, err)

	require.Len(t, result.Prices, 1)
	assert.Equal(t, "mărar", result.Prices[0].ProductName)
	assert.Equal(t, "Grădina", result.Prices[0].Brand)
}

func TestDecodeKeepsValidUTF8(t *testing.T) {
	out, err := Decode([]byte("\xef\xbb\xbfmărar"), EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "mărar", out)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding(" Windows-1250 ")
	require.NoError(t, err)
	assert.Equal(t, EncodingWindows1250, enc)

	_, err = ParseEncoding("ebcdic")
	assert.Error(t, err)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', DetectDelimiter("a;b;c\n1;2;3\n"))
	assert.Equal(t, ',', DetectDelimiter("a,b,c\n1,2,3\n"))
	assert.Equal(t, '\t', DetectDelimiter("a\tb\tc\n1\t2\t3\n"))
	assert.Equal(t, ';', DetectDelimiter(""))
}
