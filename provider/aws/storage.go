package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

const (
	DefaultPresignExpiry = time.Hour

	metadataFilename = "Original-Filename"
)

func (p *Provider) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := p.ObjectHead(ctx, key)
	if structs.ErrorNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// ObjectFetch fetches an object into memory.
func (p *Provider) ObjectFetch(ctx context.Context, key string) ([]byte, error) {
	if p.Bucket == "" {
		return nil, ErrNotConfigured("bucket")
	}

	res, err := p.S3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, p.storageLog("ObjectFetch", key, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}

func (p *Provider) ObjectHead(ctx context.Context, key string) (*structs.Object, error) {
	if p.Bucket == "" {
		return nil, ErrNotConfigured("bucket")
	}

	res, err := p.S3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, p.storageLog("ObjectHead", key, err)
	}

	o := &structs.Object{
		Key:          key,
		ContentType:  aws.StringValue(res.ContentType),
		Size:         aws.Int64Value(res.ContentLength),
		LastModified: aws.TimeValue(res.LastModified),
	}

	if v, ok := res.Metadata[metadataFilename]; ok {
		o.Filename = aws.StringValue(v)
	}

	if o.Filename == "" {
		if _, params, err := mime.ParseMediaType(aws.StringValue(res.ContentDisposition)); err == nil {
			o.Filename = params["filename"]
		}
	}

	return o, nil
}

// ObjectList returns every key under prefix, following continuation tokens.
func (p *Provider) ObjectList(ctx context.Context, prefix string) ([]string, error) {
	log := Logger.At("ObjectList").Namespace("prefix=%q", prefix).Start()

	if p.Bucket == "" {
		return nil, log.Error(ErrNotConfigured("bucket"))
	}

	objects := []string{}

	req := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.Bucket),
		Prefix: aws.String(prefix),
	}

	err := p.S3.ListObjectsV2PagesWithContext(ctx, req, func(res *s3.ListObjectsV2Output, last bool) bool {
		for _, item := range res.Contents {
			objects = append(objects, aws.StringValue(item.Key))
		}
		return true
	})
	if err != nil {
		return nil, log.Error(errors.WithStack(err))
	}

	log.Successf("count=%d", len(objects))

	return objects, nil
}

// ObjectPresign returns a time-limited GET link. When a filename is given
// the link forces a download under that name.
func (p *Provider) ObjectPresign(ctx context.Context, key string, opts structs.ObjectPresignOptions) (string, error) {
	if p.Bucket == "" {
		return "", ErrNotConfigured("bucket")
	}

	req := &s3.GetObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	}

	if opts.Filename != "" {
		req.ResponseContentDisposition = aws.String(contentDisposition(opts.Filename))
	}

	r, _ := p.S3.GetObjectRequest(req)
	r.SetContext(ctx)

	u, err := r.Presign(helpers.CoalesceDuration(opts.Expiry, DefaultPresignExpiry))
	if err != nil {
		return "", errors.WithStack(err)
	}

	return u, nil
}

// ObjectStore writes data to key, overwriting any existing object.
func (p *Provider) ObjectStore(ctx context.Context, key string, data []byte, opts structs.ObjectStoreOptions) error {
	log := Logger.At("ObjectStore").Namespace("key=%q size=%d", key, len(data)).Start()

	if p.Bucket == "" {
		return log.Error(ErrNotConfigured("bucket"))
	}

	req := &s3.PutObjectInput{
		Body:          bytes.NewReader(data),
		Bucket:        aws.String(p.Bucket),
		ContentLength: aws.Int64(int64(len(data))),
		Key:           aws.String(key),
	}

	if opts.ContentType != "" {
		req.ContentType = aws.String(opts.ContentType)
	}

	if opts.Filename != "" {
		req.ContentDisposition = aws.String(contentDisposition(opts.Filename))
		req.Metadata = map[string]*string{metadataFilename: aws.String(opts.Filename)}
	}

	if _, err := p.S3.PutObjectWithContext(ctx, req); err != nil {
		return log.Error(errors.WithStack(err))
	}

	log.Success()

	return nil
}

func (p *Provider) storageLog(at, key string, err error) error {
	err = storageError(err, key)

	if !structs.ErrorNotFound(err) {
		Logger.At(at).Namespace("key=%q code=%q", key, helpers.AwsErrorCode(err)).Error(err)
		return errors.WithStack(err)
	}

	return err
}

func contentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
