package cgroup

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/reugn/go-psutil/internal/assert"
)

// mockFileSystem is a mock implementation of FileSystem for testing
type mockFileSystem struct {
	files  map[string]string
	opened int
	closed int
}

func newMockFileSystem(files map[string]string) *mockFileSystem {
	return &mockFileSystem{files: files}
}

func (m *mockFileSystem) ReadFile(name string) ([]byte, error) {
	if data, ok := m.files[name]; ok {
		return []byte(data), nil
	}
	return nil, fs.ErrNotExist
}

func (m *mockFileSystem) Open(name string) (fs.File, error) {
	if data, ok := m.files[name]; ok {
		m.opened++
		return &mockFile{reader: strings.NewReader(data), fs: m}, nil
	}
	return nil, fs.ErrNotExist
}

// mockFile implements fs.File
type mockFile struct {
	reader io.Reader
	fs     *mockFileSystem
}

func (m *mockFile) Stat() (fs.FileInfo, error) {
	return nil, errors.New("not implemented")
}

func (m *mockFile) Read(p []byte) (int, error) {
	return m.reader.Read(p)
}

func (m *mockFile) Close() error {
	m.fs.closed++
	return nil
}

func TestReadMemory(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    Memory
		wantErr string
	}{
		{
			name: "v2",
			files: map[string]string{
				"/sys/fs/cgroup/memory.current": "1073741824\n",
				"/sys/fs/cgroup/memory.max":     "2147483648\n",
				"/sys/fs/cgroup/memory.stat":    "anon 1\ninactive_file 104857600\n",
			},
			want: Memory{Limit: 2147483648, Usage: 1073741824, Available: 1178599424},
		},
		{
			name: "v2 without stat",
			files: map[string]string{
				"/sys/fs/cgroup/memory.current": "1073741824",
				"/sys/fs/cgroup/memory.max":     "2147483648",
			},
			want: Memory{Limit: 2147483648, Usage: 1073741824, Available: 1073741824},
		},
		{
			name: "v2 usage over limit",
			files: map[string]string{
				"/sys/fs/cgroup/memory.current": "3000",
				"/sys/fs/cgroup/memory.max":     "2000",
				"/sys/fs/cgroup/memory.stat":    "inactive_file 500\n",
			},
			want: Memory{Limit: 2000, Usage: 3000, Available: 500},
		},
		{
			name: "v2 unlimited falls back to v1",
			files: map[string]string{
				"/sys/fs/cgroup/memory.current":               "1",
				"/sys/fs/cgroup/memory.max":                   "max",
				"/sys/fs/cgroup/memory/memory.usage_in_bytes": "1073741824",
				"/sys/fs/cgroup/memory/memory.limit_in_bytes": "2147483648",
				"/sys/fs/cgroup/memory/memory.stat":           "total_inactive_file 104857600\n",
			},
			want: Memory{Limit: 2147483648, Usage: 1073741824, Available: 1178599424},
		},
		{
			name: "v1 unlimited",
			files: map[string]string{
				"/sys/fs/cgroup/memory/memory.usage_in_bytes": "1073741824",
				"/sys/fs/cgroup/memory/memory.limit_in_bytes": "9223372036854771712",
			},
			wantErr: "unlimited memory limit",
		},
		{
			name: "invalid number",
			files: map[string]string{
				"/sys/fs/cgroup/memory.current": "not-a-number",
				"/sys/fs/cgroup/memory.max":     "2147483648",
			},
			wantErr: "failed to parse value",
		},
		{
			name:    "no cgroup",
			files:   map[string]string{},
			wantErr: "file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := newMockFileSystem(tt.files)
			got, err := ReadMemory(fsys)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, fsys.opened, fsys.closed)
		})
	}
}

func TestReadStat(t *testing.T) {
	fsys := newMockFileSystem(map[string]string{
		"/stat": "inactive_file_extra 7\ninactive_file 42\n",
		"/bad":  "inactive_file x\n",
	})

	v, err := readStat(fsys, "/stat", "inactive_file")
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	_, err = readStat(fsys, "/bad", "inactive_file")
	assert.ErrorContains(t, err, "failed to parse value")

	_, err = readStat(fsys, "/stat", "missing")
	assert.ErrorContains(t, err, "not found")

	assert.Equal(t, 3, fsys.opened)
	assert.Equal(t, 3, fsys.closed)
}
