// Package objectstore keeps the folder tree and file content of the document
// libraries in an S3-compatible bucket. A folder is a zero-byte marker object
// whose key ends in "/"; a file is an object under its folder's prefix.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"projdocs/internal/config"
	"projdocs/internal/store"
)

// DefaultChunkSize is the multipart part size used by PutChunked.
const DefaultChunkSize int64 = 10 << 20

// minPartSize is the smallest part S3 accepts for anything but the last part.
const minPartSize int64 = 5 << 20

// objectClient is the subset of *minio.Client used by Store.
type objectClient interface {
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
}

// multipartClient is the subset of minio.Core used for chunked uploads.
type multipartClient interface {
	NewMultipartUpload(ctx context.Context, bucket, object string, opts minio.PutObjectOptions) (string, error)
	PutObjectPart(ctx context.Context, bucket, object, uploadID string, partID int, data io.Reader, size int64, opts minio.PutObjectPartOptions) (minio.ObjectPart, error)
	CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string, parts []minio.CompletePart, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error
}

// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	client    objectClient
	core      multipartClient
	bucket    string
	chunkSize int64
	now       func() time.Time
}

var _ store.FolderStore = (*Store)(nil)

// New creates a Store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func New(ctx context.Context, cfg config.MinIOConfig, chunkSize int64) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return newStore(cli, minio.Core{Client: cli}, cfg.Bucket, chunkSize), nil
}

func newStore(client objectClient, core multipartClient, bucket string, chunkSize int64) *Store {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < minPartSize {
		chunkSize = minPartSize
	}
	return &Store{client: client, core: core, bucket: bucket, chunkSize: chunkSize, now: time.Now}
}

// objectKey maps a file path to its object key.
func objectKey(p string) string {
	return strings.TrimPrefix(store.Clean(p), "/")
}

// markerKey maps a folder path to its marker key. The root has no marker.
func markerKey(p string) string {
	k := objectKey(p)
	if k == "" {
		return ""
	}
	return k + "/"
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (s *Store) stat(ctx context.Context, key string) (minio.ObjectInfo, bool, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return minio.ObjectInfo{}, false, nil
		}
		return minio.ObjectInfo{}, false, err
	}
	return info, true, nil
}

func (s *Store) FolderExists(ctx context.Context, p string) (bool, error) {
	key := markerKey(p)
	if key == "" {
		return true, nil
	}
	_, ok, err := s.stat(ctx, key)
	return ok, err
}

func (s *Store) CreateFolder(ctx context.Context, parentPath, name string) (store.FolderEntry, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return store.FolderEntry{}, fmt.Errorf("%w: folder name %q", store.ErrInvalidPath, name)
	}
	ok, err := s.FolderExists(ctx, parentPath)
	if err != nil {
		return store.FolderEntry{}, err
	}
	if !ok {
		return store.FolderEntry{}, fmt.Errorf("%w: folder %s", store.ErrNotFound, store.Clean(parentPath))
	}
	full := store.Join(parentPath, name)
	if _, exists, err := s.stat(ctx, markerKey(full)); err != nil {
		return store.FolderEntry{}, err
	} else if exists {
		return store.FolderEntry{}, fmt.Errorf("%w: folder %s", store.ErrAlreadyExists, full)
	}
	if _, err := s.client.PutObject(ctx, s.bucket, markerKey(full), bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
		return store.FolderEntry{}, fmt.Errorf("create folder %s: %w", full, err)
	}
	now := s.now()
	return store.FolderEntry{Name: name, Path: full, Created: now, Modified: now}, nil
}

// CreateRoot writes the root folder marker of a library. An existing root is kept.
func (s *Store) CreateRoot(ctx context.Context, library string) error {
	key := markerKey(library)
	if _, exists, err := s.stat(ctx, key); err != nil || exists {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	return err
}

// children lists the immediate entries under a folder, excluding its own marker.
func (s *Store) children(ctx context.Context, p string) ([]minio.ObjectInfo, error) {
	ok, err := s.FolderExists(ctx, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: folder %s", store.ErrNotFound, store.Clean(p))
	}
	prefix := markerKey(p)
	out := make([]minio.ObjectInfo, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == prefix {
			continue
		}
		out = append(out, obj)
	}
	return out, nil
}

func (s *Store) ListFolders(ctx context.Context, p string) ([]store.FolderEntry, error) {
	objs, err := s.children(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]store.FolderEntry, 0)
	for _, obj := range objs {
		if !strings.HasSuffix(obj.Key, "/") {
			continue
		}
		full := "/" + strings.TrimSuffix(obj.Key, "/")
		entry := store.FolderEntry{Path: full}
		_, entry.Name = store.Split(full)
		// Common prefixes carry no timestamps; the marker does.
		if info, ok, err := s.stat(ctx, obj.Key); err == nil && ok {
			entry.Created = info.LastModified
			entry.Modified = info.LastModified
		}
		if kids, err := s.children(ctx, full); err == nil {
			entry.ItemCount = len(kids)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) ListFiles(ctx context.Context, p string) ([]store.FileEntry, error) {
	objs, err := s.children(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]store.FileEntry, 0)
	for _, obj := range objs {
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		full := "/" + obj.Key
		_, name := store.Split(full)
		out = append(out, store.FileEntry{Name: name, Path: full, Size: obj.Size, Modified: obj.LastModified})
	}
	return out, nil
}

func (s *Store) checkTarget(ctx context.Context, ref string, overwrite bool) error {
	dir, _ := store.Split(ref)
	ok, err := s.FolderExists(ctx, dir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: folder %s", store.ErrNotFound, dir)
	}
	if overwrite {
		return nil
	}
	if _, exists, err := s.stat(ctx, objectKey(ref)); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: file %s", store.ErrAlreadyExists, ref)
	}
	return nil
}

// Put writes a file in one request.
func (s *Store) Put(ctx context.Context, ref string, r io.Reader, size int64, overwrite bool) error {
	ref = store.Clean(ref)
	if err := s.checkTarget(ctx, ref, overwrite); err != nil {
		return err
	}
	if _, err := s.client.PutObject(ctx, s.bucket, objectKey(ref), r, size, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("put %s: %w", ref, err)
	}
	return nil
}

// PutChunked writes a file as a multipart upload, one part per chunk, and reports
// the bytes sent after each part. A failed upload is aborted.
func (s *Store) PutChunked(ctx context.Context, ref string, r io.Reader, size int64, onChunk store.ChunkFunc) (err error) {
	ref = store.Clean(ref)
	if err := s.checkTarget(ctx, ref, true); err != nil {
		return err
	}
	key := objectKey(ref)
	uploadID, err := s.core.NewMultipartUpload(ctx, s.bucket, key, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("start upload %s: %w", ref, err)
	}
	defer func() {
		if err != nil {
			_ = s.core.AbortMultipartUpload(context.WithoutCancel(ctx), s.bucket, key, uploadID)
		}
	}()

	buf := make([]byte, s.chunkSize)
	var (
		parts []minio.CompletePart
		sent  int64
	)
	for part := 1; ; part++ {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			p, perr := s.core.PutObjectPart(ctx, s.bucket, key, uploadID, part, bytes.NewReader(buf[:n]), int64(n), minio.PutObjectPartOptions{})
			if perr != nil {
				return fmt.Errorf("upload part %d of %s: %w", part, ref, perr)
			}
			parts = append(parts, minio.CompletePart{PartNumber: p.PartNumber, ETag: p.ETag})
			sent += int64(n)
			if onChunk != nil {
				onChunk(sent)
			}
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read chunk at offset %d: %w", sent, rerr)
		}
	}
	if size >= 0 && sent != size {
		return fmt.Errorf("upload %s: read %d bytes, expected %d", ref, sent, size)
	}
	if _, err := s.core.CompleteMultipartUpload(ctx, s.bucket, key, uploadID, parts, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("complete upload %s: %w", ref, err)
	}
	return nil
}

// Copy performs a server-side copy.
func (s *Store) Copy(ctx context.Context, sourceRef, destRef string, overwrite bool) error {
	sourceRef, destRef = store.Clean(sourceRef), store.Clean(destRef)
	if _, ok, err := s.stat(ctx, objectKey(sourceRef)); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: file %s", store.ErrNotFound, sourceRef)
	}
	if err := s.checkTarget(ctx, destRef, overwrite); err != nil {
		return err
	}
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: objectKey(destRef)},
		minio.CopySrcOptions{Bucket: s.bucket, Object: objectKey(sourceRef)},
	)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", sourceRef, destRef, err)
	}
	return nil
}

// Size returns the stored size of a file.
func (s *Store) Size(ctx context.Context, ref string) (int64, error) {
	info, ok, err := s.stat(ctx, objectKey(ref))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: file %s", store.ErrNotFound, store.Clean(ref))
	}
	return info.Size, nil
}

// Remove deletes a file. A missing file is not an error.
func (s *Store) Remove(ctx context.Context, ref string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey(ref), minio.RemoveObjectOptions{})
}
