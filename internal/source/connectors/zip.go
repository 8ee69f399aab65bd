package connectors

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	minioclient "github.com/reforge-labs/reforge/internal/store/minio"
)

// maxEntryBytes caps a single extracted file. Larger entries fail the
// extraction rather than filling the disk.
const maxEntryBytes = 100 << 20

// ZipConnector handles uploaded project archives.
type ZipConnector struct {
	minio *minioclient.Client
}

func NewZipConnector(minio *minioclient.Client) *ZipConnector {
	return &ZipConnector{minio: minio}
}

// Upload streams the ZIP file to object storage.
func (z *ZipConnector) Upload(ctx context.Context, objectName string, reader io.Reader, size int64) error {
	return z.minio.UploadFile(ctx, objectName, reader, size)
}

// Extract downloads an uploaded ZIP from object storage and unpacks it into
// destDir. Entries must stay inside destDir and are size-capped.
func (z *ZipConnector) Extract(ctx context.Context, objectName, destDir string) error {
	reader, err := z.minio.DownloadFile(ctx, objectName)
	if err != nil {
		return fmt.Errorf("download zip: %w", err)
	}
	defer reader.Close()

	// The zip reader needs random access; spool the object to disk first.
	tmpFile, err := os.CreateTemp("", "reforge-zip-*.zip")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, reader); err != nil {
		tmpFile.Close()
		return fmt.Errorf("spool zip: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("spool zip: %w", err)
	}

	zr, err := zip.OpenReader(tmpFile.Name())
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := extractEntry(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, f.Name)

	// Reject entries that would land outside destDir (zip slip).
	if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("invalid zip entry: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open zip entry: %w", err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(rc, maxEntryBytes)); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}
