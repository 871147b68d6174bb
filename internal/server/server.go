package server

import (
	"sync"

	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Name and Version identify the server during the MCP handshake.
const Name = "docscan-mcp"

// Version is overridden at build time with -ldflags "-X ...server.Version=".
var Version = "0.1.0"

// Option customizes a Server.
type Option func(*Server)

// WithDetector replaces the still-image detector used by document_detect
// and tracker_feed. The default is the OpenCV contour detector tuned by the
// detection config section.
func WithDetector(d detection.ImageDetector) Option {
	return func(s *Server) {
		s.detector = d
	}
}

// Server handles MCP tool calls.
type Server struct {
	cfg      *config.Config
	logger   *zap.SugaredLogger
	cache    *imaging.ImageCache
	detector detection.ImageDetector
	mcp      *mcpserver.MCPServer

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a server with every tool registered. cfg must be validated;
// a nil logger discards output.
func New(cfg *config.Config, logger *zap.SugaredLogger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		cache:    imaging.NewImageCache(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detector == nil {
		s.detector = cfg.ContourDetector()
	}

	s.mcp = mcpserver.NewMCPServer(
		Name,
		Version,
		mcpserver.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	defer s.Close()
	return mcpserver.ServeStdio(s.mcp)
}

// Close releases every tracker session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		s.release(sess)
	}
}
