package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/remotefs/data"
)

const directoryContentType = "application/x-directory"

// objectKey strips the leading slash; S3 object names are relative.
func objectKey(key string) string {
	return strings.TrimPrefix(key, "/")
}

func (sb *S3Backend) Stat(ctx context.Context, key string) (*data.FileStat, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	return sb.statUnsafe(ctx, key)
}

func (sb *S3Backend) statUnsafe(ctx context.Context, key string) (*data.FileStat, error) {
	if key == "/" {
		return data.NewDirStat("/", 0755), nil
	}

	name := objectKey(key)

	// Regular object first, then directory marker
	info, err := sb.client.StatObject(ctx, sb.bucketName, name, minio.StatObjectOptions{})
	if err == nil {
		return objectToStat(key, info), nil
	}

	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return nil, err
	}

	info, err = sb.client.StatObject(ctx, sb.bucketName, name+"/", minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", data.ErrNotExist, key)
		}
		return nil, err
	}

	return objectToStat(key, info), nil
}

func (sb *S3Backend) List(ctx context.Context, key string) ([]*data.FileStat, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	stat, err := sb.statUnsafe(ctx, key)
	if err != nil {
		return nil, err
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", data.ErrNotDirectory, key)
	}

	prefix := objectKey(key)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	stats := make([]*data.FileStat, 0)
	for obj := range sb.client.ListObjects(ctx, sb.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}

		// Skip the marker of the listed directory itself
		if obj.Key == prefix {
			continue
		}

		childKey := "/" + strings.TrimSuffix(obj.Key, "/")
		stats = append(stats, &data.FileStat{
			Key:        childKey,
			Name:       path.Base(childKey),
			Mode:       objectMode(obj.Key, obj.ContentType),
			Size:       obj.Size,
			ModifyTime: obj.LastModified,
		})
	}

	return stats, nil
}

func (sb *S3Backend) Mkdir(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if _, err := sb.statUnsafe(ctx, key); err == nil {
		return fmt.Errorf("%w: %s", data.ErrExist, key)
	} else if !errors.Is(err, data.ErrNotExist) {
		return err
	}

	if err := sb.requireParentDir(ctx, key); err != nil {
		return err
	}

	name := objectKey(key) + "/"

	_, err := sb.client.PutObject(ctx, sb.bucketName, name,
		bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{
			ContentType: directoryContentType,
		})
	return err
}

func (sb *S3Backend) requireParentDir(ctx context.Context, key string) error {
	parent := path.Dir(key)
	if parent == key {
		return nil
	}

	stat, err := sb.statUnsafe(ctx, parent)
	if err != nil {
		return fmt.Errorf("%w: parent of %s", data.ErrNotExist, key)
	}

	if !stat.IsDir() {
		return fmt.Errorf("%w: parent of %s", data.ErrNotDirectory, key)
	}

	return nil
}

func (sb *S3Backend) Delete(ctx context.Context, key string) error {
	stat, err := sb.Stat(ctx, key)
	if err != nil {
		return err
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	name := objectKey(key)
	if stat.IsDir() {
		name += "/"
	}

	return sb.client.RemoveObject(ctx, sb.bucketName, name, minio.RemoveObjectOptions{})
}

// Rename is a server-side copy followed by a delete per object. For
// directories every object under the prefix is moved.
func (sb *S3Backend) Rename(ctx context.Context, from, to string) error {
	stat, err := sb.Stat(ctx, from)
	if err != nil {
		return err
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !stat.IsDir() {
		return sb.moveObject(ctx, objectKey(from), objectKey(to))
	}

	prefix := objectKey(from) + "/"
	targets := make(map[string]string)
	targets[prefix] = objectKey(to) + "/"

	for obj := range sb.client.ListObjects(ctx, sb.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}
		targets[obj.Key] = objectKey(to) + "/" + strings.TrimPrefix(obj.Key, prefix)
	}

	for src, dst := range targets {
		if err := sb.moveObject(ctx, src, dst); err != nil {
			return err
		}
	}

	return nil
}

func (sb *S3Backend) moveObject(ctx context.Context, src, dst string) error {
	_, err := sb.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: sb.bucketName, Object: dst},
		minio.CopySrcOptions{Bucket: sb.bucketName, Object: src})
	if err != nil {
		return err
	}

	return sb.client.RemoveObject(ctx, sb.bucketName, src, minio.RemoveObjectOptions{})
}

func (sb *S3Backend) Get(ctx context.Context, key string, dst io.Writer) error {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	obj, err := sb.client.GetObject(ctx, sb.bucketName, objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	if _, err := io.Copy(dst, obj); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("%w: %s", data.ErrNotExist, key)
		}
		return err
	}

	return nil
}

func (sb *S3Backend) Put(ctx context.Context, key string, src io.Reader, size int64) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, err := sb.client.PutObject(ctx, sb.bucketName, objectKey(key), src, size, minio.PutObjectOptions{})
	return err
}

// Chmod has no object-store primitive.
func (sb *S3Backend) Chmod(ctx context.Context, key string, mode data.FileMode) error {
	return fmt.Errorf("%w: chmod on s3", data.ErrUnsupported)
}

func objectToStat(key string, info minio.ObjectInfo) *data.FileStat {
	return &data.FileStat{
		Key:        key,
		Name:       path.Base(key),
		Mode:       objectMode(info.Key, info.ContentType),
		Size:       info.Size,
		ModifyTime: info.LastModified,
	}
}

func objectMode(objectName, contentType string) data.FileMode {
	if strings.HasSuffix(objectName, "/") || contentType == directoryContentType {
		return data.ModeDir | 0755
	}

	return 0644
}
