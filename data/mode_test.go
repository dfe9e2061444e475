package data

import "testing"

func TestFileMode_Predicates(t *testing.T) {
	file := FileMode(0644)
	if file.IsDir() || file.IsSymlink() {
		t.Error("Expected 0644 to be a regular file")
	}
	if !file.IsRegular() {
		t.Error("Expected 0644 to be regular")
	}
	if !file.CanRead() || !file.CanWrite() {
		t.Error("Expected 0644 to be readable and writable")
	}
	if file.CanExecute() {
		t.Error("Expected 0644 to not be executable")
	}

	dir := ModeDir | 0755
	if !dir.IsDir() {
		t.Error("Expected directory bit to be set")
	}
	if dir.IsRegular() {
		t.Error("Expected directory to not be regular")
	}
	if !dir.CanExecute() {
		t.Error("Expected 0755 directory to be executable")
	}

	link := ModeSymlink | 0777
	if !link.IsSymlink() {
		t.Error("Expected symlink bit to be set")
	}

	readonly := FileMode(0444)
	if readonly.CanWrite() {
		t.Error("Expected 0444 to not be writable")
	}
}

func TestFileMode_Perm(t *testing.T) {
	mode := ModeDir | 0755
	if mode.Perm() != 0755 {
		t.Errorf("Expected perm 0755, got %o", mode.Perm())
	}
}

func TestFileMode_String(t *testing.T) {
	cases := map[FileMode]string{
		0644:               "-rw-r--r--",
		0755:               "-rwxr-xr-x",
		ModeDir | 0755:     "drwxr-xr-x",
		ModeSymlink | 0777: "lrwxrwxrwx",
		0400:               "-r--------",
	}

	for mode, expected := range cases {
		if got := mode.String(); got != expected {
			t.Errorf("FileMode(%o).String(): expected %q, got %q", uint32(mode), expected, got)
		}
	}
}
