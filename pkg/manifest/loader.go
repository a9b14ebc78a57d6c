package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	// ErrReadManifest is returned when the manifest source cannot be opened or fetched
	ErrReadManifest = errors.New("failed to read manifest")
	// ErrDecodeManifest is returned when the manifest bytes are not a valid plugin list
	ErrDecodeManifest = errors.New("failed to parse manifest")
)

// maxManifestSize caps remote downloads
const maxManifestSize = 64 << 20

// Format identifies the encoding of a manifest document
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// S3API is the subset of the S3 client used to fetch manifests
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds settings for manifests stored in S3-compatible object storage
type S3Config struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// Loader reads manifests from local files, HTTP(S) URLs and s3:// URLs
type Loader struct {
	httpClient *http.Client
	s3Client   S3API
	s3Config   S3Config
	logger     logrus.FieldLogger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for http:// and https:// sources
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = client
	}
}

// WithHTTPTimeout sets the timeout of the default HTTP client
func WithHTTPTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		l.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithS3Client sets the client used for s3:// sources
func WithS3Client(client S3API) LoaderOption {
	return func(l *Loader) {
		l.s3Client = client
	}
}

// WithS3Config sets the settings used to build an S3 client on first use
func WithS3Config(cfg S3Config) LoaderOption {
	return func(l *Loader) {
		l.s3Config = cfg
	}
}

// WithLogger sets the loader logger
func WithLogger(logger logrus.FieldLogger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a new manifest loader
func NewLoader(opts ...LoaderOption) *Loader {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     discard,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadManifest loads and parses a manifest from a local file
func LoadManifest(file string) (Manifest, error) {
	return NewLoader().Load(context.Background(), file)
}

// Load reads the manifest at source and decodes it. Read failures wrap
// ErrReadManifest and decode failures wrap ErrDecodeManifest.
func (l *Loader) Load(ctx context.Context, source string) (Manifest, error) {
	start := time.Now()

	data, err := l.read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadManifest, err)
	}

	m, err := Decode(data, FormatFor(source))
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"source":   source,
		"bytes":    len(data),
		"plugins":  len(m),
		"versions": m.VersionCount(),
		"duration": time.Since(start),
	}).Debug("Loaded manifest")

	return m, nil
}

// Source kinds returned by SourceKind
const (
	SourceFile = "file"
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// SourceKind reports where a manifest source is read from
func SourceKind(source string) string {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return SourceHTTP
	case strings.HasPrefix(source, "s3://"):
		return SourceS3
	default:
		return SourceFile
	}
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	switch SourceKind(source) {
	case SourceHTTP:
		return l.readHTTP(ctx, source)
	case SourceS3:
		return l.readS3(ctx, source)
	default:
		return os.ReadFile(source)
	}
}

func (l *Loader) readHTTP(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status fetching %s: %s", source, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

func (l *Loader) readS3(ctx context.Context, source string) ([]byte, error) {
	bucket, key, err := parseS3Source(source)
	if err != nil {
		return nil, err
	}

	if l.s3Client == nil {
		client, err := newS3Client(ctx, l.s3Config)
		if err != nil {
			return nil, err
		}
		l.s3Client = client
	}

	out, err := l.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from s3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read s3 object: %w", err)
	}
	return data, nil
}

// parseS3Source splits s3://bucket/key into its parts
func parseS3Source(source string) (string, string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 location: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q: expected s3://bucket/key", source)
	}
	return u.Host, key, nil
}

func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		// Static credentials for MinIO or explicit keys
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	}), nil
}

// FormatFor picks a format from the extension of a path or URL
func FormatFor(source string) Format {
	p := source
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Decode parses manifest bytes. FormatAuto treats documents starting with
// '[' or '{' as JSON and anything else as YAML.
func Decode(data []byte, format Format) (Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: manifest document is empty", ErrDecodeManifest)
	}

	if format == FormatAuto {
		format = FormatYAML
		if trimmed[0] == '[' || trimmed[0] == '{' {
			format = FormatJSON
		}
	}

	var m Manifest
	switch format {
	case FormatJSON:
		if trimmed[0] != '[' {
			return nil, fmt.Errorf("%w: top-level value must be an array of plugins", ErrDecodeManifest)
		}
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeManifest, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeManifest, err)
		}
		if m == nil {
			return nil, fmt.Errorf("%w: top-level value must be a list of plugins", ErrDecodeManifest)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrDecodeManifest, format)
	}

	return m, nil
}
