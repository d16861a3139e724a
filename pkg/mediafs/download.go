// Package mediafs keeps a local cache of preview clips in sync with the
// collections' S3 buckets.
package mediafs

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"media-dock/pkg/media"
)

// CacheDir is where downloaded preview clips live.
const CacheDir = "assets/clips"

// DownloadSegment downloads up to count clips of a collection starting at
// startIndex (0-based) and returns their local paths. The boolean reports
// whether the end of the collection was reached.
func DownloadSegment(collection media.Collection, startIndex, count int) ([]string, bool, error) {
	log.Printf("DownloadSegment | collection=%s | startIndex=%d | count=%d", collection.Title, startIndex, count)
	if count <= 0 {
		return nil, false, nil
	}

	client, err := newClient()
	if err != nil {
		return nil, false, err
	}

	if err := os.MkdirAll(CacheDir, os.ModePerm); err != nil {
		return nil, false, err
	}

	keys, err := listClipKeys(client, collection)
	if err != nil {
		return nil, false, err
	}
	if startIndex > len(keys) {
		return nil, true, fmt.Errorf("startIndex %d beyond collection of %d clips", startIndex, len(keys))
	}

	endIndex := startIndex + count
	if endIndex > len(keys) {
		endIndex = len(keys)
	}
	segment := keys[startIndex:endIndex]
	reachedEnd := endIndex >= len(keys)

	paths := make([]string, 0, len(segment))
	for _, key := range segment {
		localPath, err := downloadClip(client, collection.Bucket, key)
		if err != nil {
			log.Printf("DownloadSegment: failed to download %s: %v", key, err)
			continue // skip this clip but keep going
		}
		paths = append(paths, localPath)
	}

	if len(paths) == 0 && len(segment) > 0 {
		return nil, reachedEnd, fmt.Errorf("no clips downloaded for segment starting at %d", startIndex)
	}

	log.Printf("DownloadSegment completed | requested=%d | downloaded=%d | reachedEnd=%t", count, len(paths), reachedEnd)
	return paths, reachedEnd, nil
}

func newClient() (*s3.S3, error) {
	region := os.Getenv("AWS_DEFAULT_REGION")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if region == "" || accessKey == "" || secretKey == "" {
		return nil, errors.New("missing one or more required environment variables: AWS_DEFAULT_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}

func listClipKeys(client *s3.S3, collection media.Collection) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(collection.Bucket),
		Prefix: aws.String(collection.Folder),
	}

	var keys []string
	err := client.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue // skip empty keys or "directories"
			}
			keys = append(keys, *obj.Key)
		}
		return !lastPage
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// downloadClip fetches one object into the cache. It writes to a uniquely
// named temp file first and renames into place, so a crash mid-download
// never leaves a truncated clip under its final name.
func downloadClip(client *s3.S3, bucket, key string) (string, error) {
	result, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	defer result.Body.Close()

	tmpPath := filepath.Join(CacheDir, "clip-"+uuid.New().String()+".part")
	out, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, result.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	localPath := filepath.Join(CacheDir, filepath.Base(key))
	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return localPath, nil
}
