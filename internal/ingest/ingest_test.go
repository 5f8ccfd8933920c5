package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/poi-xref/internal/db"
)

const sampleCSV = `id,name,category,address,lon,lat,rating
a1,Macy's,department_store,151 W 34th St,-73.9893,40.7506,4.5
a2,,cafe,N/A,-73.9857,40.7484,
a3,Joe's Pizza,,,"-73,9903","40,7305",3
`

func TestReadCSV(t *testing.T) {
	m := DefaultMapping()
	m.Attributes = []string{"rating"}

	c, err := ReadCSV(strings.NewReader(sampleCSV), "google", m)
	require.NoError(t, err)
	require.Len(t, c.POIs, 3)
	assert.Equal(t, "google", c.Source)

	a1 := c.POIs[0]
	assert.Equal(t, "a1", a1.ID)
	assert.Equal(t, orb.Point{-73.9893, 40.7506}, a1.Location)
	assert.Equal(t, "Macy's", *a1.Name)
	assert.Equal(t, "department_store", *a1.Category)
	assert.Equal(t, map[string]string{"rating": "4.5"}, a1.Attributes)

	a2 := c.POIs[1]
	assert.Nil(t, a2.Name)
	assert.Nil(t, a2.Address, "N/A is missing")
	assert.Empty(t, a2.Attributes)

	a3 := c.POIs[2]
	assert.Nil(t, a3.Category)
	assert.InDelta(t, -73.9903, a3.Location.Lon(), 1e-9)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"duplicate id", "id,lon,lat\nx,1,2\nx,3,4\n", ErrDuplicateID},
		{"bad longitude", "id,lon,lat\nx,abc,2\n", ErrMalformedInput},
		{"missing latitude", "id,lon,lat\nx,1,\n", ErrMalformedInput},
		{"out of range", "id,lon,lat\nx,200,2\n", ErrMalformedInput},
		{"missing id", "id,lon,lat\n,1,2\n", ErrMalformedInput},
		{"missing column", "id,lon\nx,1\n", ErrMalformedInput},
		{"bad quoting", "id,lon,lat\n\"x,1,2\n", ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data), "src", DefaultMapping())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadCSV_KeepFirstDuplicate(t *testing.T) {
	m := DefaultMapping()
	m.KeepFirstDuplicate = true
	c, err := ReadCSV(strings.NewReader("id,name,lon,lat\nx,first,1,2\nx,second,3,4\n"), "osm", m)
	require.NoError(t, err)
	require.Len(t, c.POIs, 1)
	assert.Equal(t, "first", *c.POIs[0].Name)
}

func TestReadCSV_Empty(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(""), "src", DefaultMapping())
	require.NoError(t, err)
	assert.NotNil(t, c.POIs)
	assert.Empty(t, c.POIs)
}

func TestReadCSV_OSM(t *testing.T) {
	data := "id,name,amenity,shop,addr:housenumber,addr:street,addr:housename,lon,lat\n" +
		"n1,Corner Deli,,deli,12,Main Street,,-73.9,40.7\n" +
		"n2,Town Hall,townhall,,,,Civic Center,-73.9,40.7\n" +
		"n3,Kiosk,nan,None,,Broadway,,-73.9,40.7\n" +
		"n4,Bench,bench,,,,,-73.9,40.7\n"

	c, err := ReadCSV(strings.NewReader(data), "osm", OSMMapping())
	require.NoError(t, err)
	require.Len(t, c.POIs, 4)

	assert.Equal(t, "deli", *c.POIs[0].Category)
	assert.Equal(t, "12 Main Street", *c.POIs[0].Address)
	assert.Equal(t, "townhall", *c.POIs[1].Category)
	assert.Equal(t, "Civic Center", *c.POIs[1].Address)
	assert.Nil(t, c.POIs[2].Category)
	assert.Equal(t, "Broadway", *c.POIs[2].Address)
	assert.Nil(t, c.POIs[3].Address)
}

func TestBuildOSMAddress(t *testing.T) {
	assert.Equal(t, "5 High St", *BuildOSMAddress(map[string]string{"addr:housenumber": "5", "addr:street": "High St"}))
	assert.Equal(t, "High St", *BuildOSMAddress(map[string]string{"addr:housenumber": "nan", "addr:street": "High St"}))
	assert.Nil(t, BuildOSMAddress(map[string]string{"addr:housenumber": "5"}))
	assert.Nil(t, BuildOSMAddress(nil))
}

func TestReadGeoJSON(t *testing.T) {
	data := []byte(`{"type":"FeatureCollection","features":[
	 {"type":"Feature","id":"f1","geometry":{"type":"Point","coordinates":[-73.98,40.75]},
	  "properties":{"name":"Macy's","category":"department_store","address":null}},
	 {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]},
	  "properties":{"id":42,"name":"Park"}}
	]}`)

	c, err := ReadGeoJSON(data, "overture", DefaultMapping())
	require.NoError(t, err)
	require.Len(t, c.POIs, 2)

	assert.Equal(t, "f1", c.POIs[0].ID)
	assert.Equal(t, orb.Point{-73.98, 40.75}, c.POIs[0].Location)
	assert.Nil(t, c.POIs[0].Address)

	assert.Equal(t, "42", c.POIs[1].ID)
	assert.InDelta(t, 1.0, c.POIs[1].Location.Lon(), 1e-9)
	assert.InDelta(t, 1.0, c.POIs[1].Location.Lat(), 1e-9)
}

func TestReadGeoJSON_Errors(t *testing.T) {
	_, err := ReadGeoJSON([]byte(`{`), "x", DefaultMapping())
	assert.ErrorIs(t, err, ErrMalformedInput)

	noID := []byte(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}]}`)
	_, err = ReadGeoJSON(noID, "x", DefaultMapping())
	assert.ErrorIs(t, err, ErrMalformedInput)

	dup := []byte(`{"type":"FeatureCollection","features":[
	 {"type":"Feature","id":"a","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}},
	 {"type":"Feature","id":"a","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}]}`)
	_, err = ReadGeoJSON(dup, "x", DefaultMapping())
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pois.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"ID", "Name", "Category", "Lon", "Lat"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"x1", "Target", "store", -73.99, 40.75}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"x2", "CVS", "", -73.98, 40.74}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	c, err := LoadXLSX(path, "", "fsq", DefaultMapping())
	require.NoError(t, err)
	require.Len(t, c.POIs, 2)
	assert.Equal(t, "Target", *c.POIs[0].Name)
	assert.Nil(t, c.POIs[1].Category)
	assert.InDelta(t, 40.74, c.POIs[1].Location.Lat(), 1e-9)
}

func TestReadSQL_SQLite(t *testing.T) {
	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "places.sqlite"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.DB.Exec(`CREATE TABLE places (id TEXT, name TEXT, category TEXT, address TEXT, lon REAL, lat REAL)`)
	require.NoError(t, err)
	_, err = conn.DB.Exec(`INSERT INTO places VALUES
		('o1', 'Starbucks', 'coffee_shop', '1 Main St', -73.98, 40.75),
		('o2', NULL, NULL, NULL, -73.97, 40.76)`)
	require.NoError(t, err)

	c, err := ReadSQL(context.Background(), conn.DB,
		`SELECT id, name, category, address, lon, lat FROM places WHERE lon < ? ORDER BY id`,
		"overture", DefaultMapping(), 0)
	require.NoError(t, err)
	require.Len(t, c.POIs, 2)
	assert.Equal(t, "Starbucks", *c.POIs[0].Name)
	assert.Equal(t, orb.Point{-73.98, 40.75}, c.POIs[0].Location)
	assert.Nil(t, c.POIs[1].Name)
	assert.Nil(t, c.POIs[1].Category)

	_, err = ReadSQL(context.Background(), conn.DB, `SELECT id FROM places`, "overture", DefaultMapping())
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tok, err := ReadToken(write("obj.json", `{"token": "abc123"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)

	tok, err = ReadToken(write("str.json", `"xyz"`))
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for name, body := range map[string]string{
		"num.json":   `42`,
		"nokey.json": `{"key": "abc"}`,
		"bad.json":   `{token}`,
		"empty.json": `"  "`,
	} {
		_, err := ReadToken(write(name, body))
		assert.ErrorIs(t, err, ErrMalformedInput, name)
	}

	_, err = ReadToken(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}

func TestLoad_Dispatch(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "google_nyc.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	c, err := Load(csvPath, "", DefaultMapping())
	require.NoError(t, err)
	assert.Equal(t, "google_nyc", c.Source)
	assert.Len(t, c.POIs, 3)

	_, err = Load(filepath.Join(dir, "x.parquet"), "", DefaultMapping())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestMappingFor(t *testing.T) {
	assert.True(t, MappingFor("OSM").OSMAddress)
	assert.True(t, MappingFor("google").SimplifyAddress)
	assert.Equal(t, DefaultMapping(), MappingFor("overture"))
}

func TestInputError_Message(t *testing.T) {
	err := NewInputError("google", 3, "lat", "bad value %q", "x")
	assert.Equal(t, `google: row 3: field 'lat': bad value "x"`, err.Error())
	assert.Equal(t, "google: broken", NewInputError("google", 0, "", "broken").Error())
}
