package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khajiev13/amazon-crawler/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSaveProductsEmptyWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, SaveProducts(path, nil))

	assert.Equal(t, [][]string{{"title", "link", "asin"}}, readCSV(t, path))
}

func TestSaveAndLoadProducts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	products := []models.Record{
		models.NewProduct(`Samsung 55" QLED, 2024`, "https://www.amazon.com/dp/B0CVS5XZGB", ""),
		models.NewProduct("TCL 50", "https://www.amazon.com/TCL/dp/B0BXYZ1234/ref=sr_1_2", ""),
	}
	require.NoError(t, SaveProducts(path, products))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{`Samsung 55" QLED, 2024`, "https://www.amazon.com/dp/B0CVS5XZGB", "B0CVS5XZGB"}, rows[1])

	loaded, err := LoadProducts(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, products[0], loaded[0])
	assert.Equal(t, "B0BXYZ1234", loaded[1].ASIN)
}

func TestSaveFilteredProductsUsesTheirHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.csv")
	fp := models.NewFilteredProduct(models.NewProduct("TV", "https://www.amazon.com/dp/B0CVS5XZGB", ""))
	fp.Specs[models.SpecOperatingSystem] = "Tizen"
	require.NoError(t, SaveProducts(path, []models.Record{fp}))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, fp.Header(), rows[0])
	assert.Contains(t, rows[0], "operating_system")
	assert.Contains(t, rows[1], "Tizen")
}

func TestLoadProductsIdentifierColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Title,Link,identifier\n"+
			"A,https://www.amazon.com/dp/B000000001,\n"+
			"B,https://www.amazon.com/x,B000000002\n"+
			"C,https://www.amazon.com/s?k=tv,\n"), 0o644))

	products, err := LoadProducts(path)
	require.NoError(t, err)
	require.Len(t, products, 2, "row without any ASIN is skipped")
	assert.Equal(t, "B000000001", products[0].ASIN)
	assert.Equal(t, "B000000002", products[1].ASIN)
}

func TestLoadProductsRequiresColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,url\nA,B\n"), 0o644))
	_, err := LoadProducts(path)
	assert.Error(t, err)

	_, err = LoadProducts(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadASINs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asins.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"asin\n# televisions\nB0CVS5XZGB\n\n  B0BXYZ1234 \nB0CVS5XZGB\nB09V4MXBSN,extra,columns\n"), 0o644))

	asins, err := LoadASINs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"B0CVS5XZGB", "B0BXYZ1234", "B09V4MXBSN"}, asins)
}

func TestLoadASINsDropsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asins.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"../../etc/passwd\nb0cvs5xzgb\nB0CVS5XZG\nB0CVS5XZGB1\nB0-VS5XZGB\nhttps://www.amazon.com/dp/B0BXYZ1234\n"), 0o644))

	asins, err := LoadASINs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"B0CVS5XZGB"}, asins)
}

func TestSaveReviews(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reviews")
	path := ReviewFilename(dir, "reviews", "B0CVS5XZGB")

	saved, err := SaveReviews(path, nil)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.NoFileExists(t, path)

	r := models.NewReview()
	r.CustomerName = "Jane"
	r.HelpfulCount = 3
	r.VerifiedPurchase = true
	r.Images = []models.ReviewImage{
		{ThumbnailURL: "a._SY88.jpg", FullSizeURL: "a._SL1600_.jpg"},
		{ThumbnailURL: "b._SY88.jpg", FullSizeURL: "b._SL1600_.jpg"},
	}
	saved, err = SaveReviews(path, []models.Review{r})
	require.NoError(t, err)
	assert.True(t, saved)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ReviewHeader, rows[0])
	assert.Equal(t, "Jane", rows[1][0])
	assert.Equal(t, "true", rows[1][6])
	assert.Equal(t, "3", rows[1][7])
	assert.Equal(t, "a._SL1600_.jpg,b._SL1600_.jpg", rows[1][8])
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, filepath.Join("reviews", "reviews_product_1_Samsung_55__QLED__.csv"),
		ReviewFilename("reviews", "reviews_product_1", SanitizeTitle(`Samsung 55" QLED!!`)))
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz0123", SanitizeTitle("abcdefghijklmnopqrstuvwxyz0123456789"))
	assert.Equal(t, "Téléviseur_4K", SanitizeTitle("Téléviseur 4K"))
	assert.Equal(t, "out_filtered.csv", FilteredFilename("out.csv"))
	assert.Equal(t, filepath.Join("data", "tvs_filtered.csv"), FilteredFilename(filepath.Join("data", "tvs.csv")))
}
