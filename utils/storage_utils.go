package utils

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	TipImagesFolder         = "tips"
	TicketAttachmentsFolder = "tickets"
)

func getS3Client() (*s3.S3, string, error) {
	bucket := os.Getenv("S3_BUCKET")
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	if bucket == "" || endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, "", fmt.Errorf("s3 storage is not configured")
	}

	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "us-east-1"
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Endpoint:    aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, "", err
	}
	return s3.New(sess), bucket, nil
}

// UploadFileToS3 stores the file under folder/fileName and returns its public
// URL. The content type is sniffed from the file bytes.
func UploadFileToS3(file []byte, fileName string, folder string) (string, error) {
	s3Client, bucket, err := getS3Client()
	if err != nil {
		return "", err
	}

	filePath := fmt.Sprintf("%s/%s", folder, fileName)
	_, err = s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(http.DetectContentType(file)),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	publicBase := os.Getenv("S3_PUBLIC_BASE_URL")
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return fmt.Sprintf("%s/%s", publicBase, filePath), nil
}
