package s3

type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: custom endpoint (MinIO, LocalStack)
	ForcePathStyle  bool
	Prefix          string // Key prefix under which content is placed
}
