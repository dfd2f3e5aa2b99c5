package dfxml

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadReport(t *testing.T) {
	var buf bytes.Buffer

	w := NewDFXMLWriter(&buf)
	require.NoError(t, w.WriteHeader(DFXMLHeader{
		XmlOutput: XmlOutputVersion,
		Metadata:  DefaultMetadata,
		Creator: Creator{
			Package:              "rz4",
			Version:              "dev",
			ExecutionEnvironment: GetExecEnv(),
		},
		Source: Source{
			ImageFilename: "disk.img",
			ImageSize:     1 << 20,
			BufferSize:    262144,
		},
	}))

	objects := []FileObject{
		{
			Filename: "0000000000000100-0000000000002000.wav",
			FileSize: 0x2000,
			ByteRuns: ByteRuns{Runs: []ByteRun{{ImgOffset: 0x100, Length: 0x2000}}},
		},
		{
			Filename: "0000000000005000-0000000000001000.wav",
			FileSize: 0x1000,
			ByteRuns: ByteRuns{Runs: []ByteRun{{ImgOffset: 0x5000, Length: 0x1000}}},
		},
	}
	for _, o := range objects {
		require.NoError(t, w.WriteFileObject(o))
	}
	require.NoError(t, w.Close())

	require.Contains(t, buf.String(), `<dfxml xmloutputversion="1.0">`)

	report, err := ReadReport(&buf)
	require.NoError(t, err)
	require.Equal(t, "disk.img", report.Source.ImageFilename)
	require.Equal(t, uint64(1<<20), report.Source.ImageSize)
	require.Len(t, report.Objects, 2)

	for i, o := range report.Objects {
		require.Equal(t, objects[i].Filename, o.Filename)
		require.Equal(t, objects[i].FileSize, o.FileSize)
		require.Equal(t, objects[i].ByteRuns, o.ByteRuns)
	}
}
