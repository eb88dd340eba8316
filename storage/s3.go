package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"
)

// S3 is an implementation of Store backed by AWS S3. Keys are used verbatim
// as object keys, under an optional prefix.
type S3 struct {
	profile string
	region  string
	bucket  string
	prefix  string

	mu     sync.Mutex
	client s3iface.S3API
}

func NewS3(profile, region, bucket, prefix string) *S3 {
	return &S3{
		profile: profile,
		region:  region,
		bucket:  bucket,
		prefix:  prefix,
	}
}

// NewS3WithClient is like NewS3 but uses the given client rather than one
// built from a shared credentials profile.
func NewS3WithClient(client s3iface.S3API, bucket, prefix string) *S3 {
	return &S3{
		bucket: bucket,
		prefix: prefix,
		client: client,
	}
}

func (s *S3) Get(key string) (value []byte, err error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}
	objectKey := s.prefix + key
	output, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if rfErr, ok := err.(awserr.RequestFailure); ok {
			if rfErr.StatusCode() == http.StatusNotFound {
				return nil, fmt.Errorf("%q: %w", objectKey, ErrNotFound)
			}
		}
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("%q: %w", objectKey, ErrNotFound)
		}
		return nil, err
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			log.WithFields(log.Fields{
				"op":  "get",
				"key": objectKey,
			}).Warning("Could not close response body")
		}
	}()
	return io.ReadAll(output.Body)
}

func (s *S3) Put(key string, value []byte) (err error) {
	client, err := s.ensureClient()
	if err == nil {
		_, err = client.PutObject(&s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.prefix + key),
			Body:   bytes.NewReader(value),
		})
	}
	return
}

func (s *S3) ensureClient() (s3iface.S3API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(s.region),
		Credentials: credentials.NewSharedCredentials("", s.profile),
	})
	if err != nil {
		return nil, err
	}
	s.client = s3.New(sess)
	return s.client, nil
}
