package backblaze

type Config struct {
	AccountID      string
	ApplicationKey string
	BucketName     string
	Prefix         string
}
