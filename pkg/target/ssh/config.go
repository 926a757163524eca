package ssh

type Config struct {
	Host          string
	Port          int // Default: 22
	User          string
	Password      string // Optional, used when no key is configured
	KeyPath       string // Optional: path to private key
	KeyPassphrase string // Optional
	RemotePath    string // Base directory on the remote server
}
