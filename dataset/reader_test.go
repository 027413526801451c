package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zebFixture = `,raw_accelerometer_signal,car,phone,mounting,segment_id,segment_type,vel [km/h],vel [km/h] (r),ZWAUN_15
0,"0.1,0.2,0.3",Opel Van,iPhone 13,holder,1,asphalt,31.2,30,1.5
1,"0.4, 0.5 ,0.6",Opel Van,iPhone 13,holder,2,asphalt,29.0,30,3.5
2,,Tim Private Car,iPhone XR,suction,1,asphalt,52.0,50,4.5
3,nan,Tim Private Car,iPhone XR,suction,2.0,cobble,49.5,50,
`

func TestReadDefaultColumns(t *testing.T) {
	ds, err := Read(strings.NewReader(zebFixture), DefaultReadOptions())
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{SetupColumn, SourceColumn, GradeColumn}, ds.Derived)

	first := ds.Rows[0]
	assert.Equal(t, 0, first.Index)
	require.NotNil(t, first.RawSignal)
	assert.Equal(t, "0.1,0.2,0.3", *first.RawSignal)
	assert.Equal(t, "Van 1", first.Vehicle)
	assert.Equal(t, "iPhone 13", first.Device)
	assert.Equal(t, "iPhone 13Van 1holder", first.Setup)
	assert.Equal(t, PrimarySource, first.Source)
	require.NotNil(t, first.SegmentID)
	assert.Equal(t, 1, *first.SegmentID)
	require.NotNil(t, first.VelocityBucket)
	assert.Equal(t, 30.0, *first.VelocityBucket)
	require.NotNil(t, first.Target)
	assert.Equal(t, 1, first.Grade)
	assert.Equal(t, 3, ds.Rows[1].Grade)
	assert.Equal(t, 5, ds.Rows[2].Grade)

	assert.Nil(t, ds.Rows[2].RawSignal)
	assert.Nil(t, ds.Rows[3].RawSignal)
	assert.Nil(t, ds.Rows[3].Target)
	assert.Equal(t, 0, ds.Rows[3].Grade)
	assert.Equal(t, 2, *ds.Rows[3].SegmentID)
	assert.Equal(t, "Car", ds.Rows[3].Vehicle)

	raw := ds.RawSignals()
	require.Len(t, raw, 4)
	assert.Nil(t, raw[2])
}

func TestReadMissingRequiredColumn(t *testing.T) {
	csv := "raw_accelerometer_signal,car,phone,segment_id,ZWAUN_15\n\"1,2\",a,b,1,2\n"
	_, err := Read(strings.NewReader(csv), DefaultReadOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "vel [km/h] (r)")

	opts := DefaultReadOptions()
	opts.Needs = NeedNotes
	_, err = Read(strings.NewReader(csv), opts)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "note")
}

func TestReadDerivesBucketFromVelocity(t *testing.T) {
	csv := "raw_accelerometer_signal,car,phone,segment_id,vel [km/h],ZWAUN_15\n\"1,2\",a,b,1,34.0,2\n\"1,2\",a,b,2,36.0,2\n"
	opts := DefaultReadOptions()
	opts.BucketWidth = 10
	ds, err := Read(strings.NewReader(csv), opts)
	require.NoError(t, err)
	assert.Equal(t, 30.0, *ds.Rows[0].VelocityBucket)
	assert.Equal(t, 40.0, *ds.Rows[1].VelocityBucket)
}

func TestReadRejectsBadNumbers(t *testing.T) {
	csv := "raw_accelerometer_signal,car,phone,segment_id,vel [km/h] (r),ZWAUN_15\n\"1,2\",a,b,1,30,2\n\"1,2\",a,b,x,30,2\n"
	_, err := Read(strings.NewReader(csv), DefaultReadOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "segment_id")

	csv = "raw_accelerometer_signal,car,phone,segment_id,vel [km/h] (r),ZWAUN_15\n\"1,2\",a,b,1.5,30,2\n"
	_, err = Read(strings.NewReader(csv), DefaultReadOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an integer")
}

func TestFilterAndAccounts(t *testing.T) {
	csv := `raw_accelerometer_signal,car,phone,mounting,note,account
"1,2",a,b,m,Exp. 4 - Loose Mounting,Mounting Strength Test
"1,2",a,b,m,Exp. 4 - Tight Mounting,Mounting Strength Test
"1,2",a,b,m,Exp. 6 - Smartphone 13,Phone Type Test
"1,2",a,b,m,Exp. 8 - iPhone 13 (no case),Phone Type Test 2
`
	opts := ReadOptions{Columns: DefaultColumns(), Needs: NeedNotes, DefaultSource: PrimarySource}
	ds, err := Read(strings.NewReader(csv), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mounting Strength Test", "Phone Type Test", "Phone Type Test 2"}, ds.Accounts())

	phones := ds.WithAccounts("Phone Type Test", "Phone Type Test 2")
	require.Equal(t, 2, phones.Len())
	assert.Equal(t, 2, phones.Rows[0].Index)
	assert.Equal(t, ds.Records[3], phones.Records[1])
	assert.Equal(t, "bam", phones.Rows[0].Setup)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zeb.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeff"+zebFixture), 0o644))
	ds, err := LoadFile(path, DefaultReadOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, "", ds.Header[0])

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultReadOptions())
	assert.Error(t, err)
}

func TestDigitizeGrade(t *testing.T) {
	assert.Equal(t, 1, DigitizeGrade(0))
	assert.Equal(t, 1, DigitizeGrade(2))
	assert.Equal(t, 3, DigitizeGrade(2.01))
	assert.Equal(t, 3, DigitizeGrade(4))
	assert.Equal(t, 5, DigitizeGrade(4.5))
}
