package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the part of the S3 client used to fetch batch input.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// OpenInput opens a local file or an s3://bucket/key object. s3:///key reads
// key from defaultBucket. objects may be nil when only local paths are used.
func OpenInput(ctx context.Context, path string, objects ObjectGetter, defaultBucket string) (io.ReadCloser, error) {
	if !strings.HasPrefix(path, "s3://") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	u, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	bucket := u.Host
	if bucket == "" {
		bucket = defaultBucket
	}
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 path %q", path)
	}
	if objects == nil {
		return nil, fmt.Errorf("no s3 client configured for %q", path)
	}
	out, err := objects.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return out.Body, nil
}

// OpenOutput opens path for appending, creating it if needed.
func OpenOutput(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// MaxLineBytes caps one input line. Longer lines fail the read with
// bufio.ErrTooLong.
const MaxLineBytes = 1 << 20

// ReadPhrases returns the trimmed non-blank lines of r.
func ReadPhrases(r io.Reader) ([]string, error) {
	var phrases []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for scanner.Scan() {
		phrase := strings.TrimSpace(scanner.Text())
		if phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	return phrases, scanner.Err()
}
