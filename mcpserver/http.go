package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tanradell/toolbridge/bridge"
)

const (
	defaultListenAddress    = "127.0.0.1:0"
	defaultShutdownDuration = 5 * time.Second
	headerContentType       = "Content-Type"
	mimeTypeJSON            = "application/json"
	rootPath                = "/"
	toolsPath               = "/tools"
	toolsPrefix             = "/tools/"
	errorFieldName          = "error"
	kindFieldName           = "kind"
)

// HTTPConfig defines runtime options for the HTTP transport.
type HTTPConfig struct {
	Address         string
	ShutdownTimeout time.Duration
}

// toolListing is the wire form of one cataloged tool.
type toolListing struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Path        []string           `json:"path"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// invocationResponse is the wire form of a successful invocation.
type invocationResponse struct {
	Output  string `json:"output"`
	Success bool   `json:"success"`
}

// HTTPServer serves the tool catalog and executes invocations over HTTP.
type HTTPServer struct {
	executionBridge *bridge.Bridge
	config          HTTPConfig
	logger          *zap.Logger
}

// NewHTTPServer creates an HTTPServer with defaults applied.
func NewHTTPServer(executionBridge *bridge.Bridge, config HTTPConfig, logger *zap.Logger) *HTTPServer {
	normalized := config
	if normalized.Address == "" {
		normalized.Address = defaultListenAddress
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPServer{executionBridge: executionBridge, config: normalized, logger: logger}
}

// Run starts the HTTP server and blocks until the provided context is
// canceled. The notify callback receives the bound address once the listener
// is active.
func (server *HTTPServer) Run(ctx context.Context, notify func(string)) error {
	listener, listenErr := net.Listen("tcp", server.config.Address)
	if listenErr != nil {
		return fmt.Errorf("listen on %s: %w", server.config.Address, listenErr)
	}
	actualAddress := listener.Addr().String()

	router := http.NewServeMux()
	router.HandleFunc(rootPath, server.handleRoot)
	router.HandleFunc(toolsPath, server.handleTools)
	router.HandleFunc(toolsPrefix, server.handleInvocation)

	httpServer := &http.Server{Handler: router}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve tools: %w", serveErr)
		}
		return nil
	})

	server.logger.Info("serving tool catalog over HTTP", zap.String("address", actualAddress))
	if notify != nil {
		notify(actualAddress)
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) && !errors.Is(shutdownErr, http.ErrServerClosed) {
			return fmt.Errorf("shutdown tools server: %w", shutdownErr)
		}
		return nil
	})

	return group.Wait()
}

func (server *HTTPServer) handleRoot(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writer.WriteHeader(http.StatusOK)
}

func (server *HTTPServer) handleTools(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	descriptors := server.executionBridge.Catalog().Tools()
	listings := make([]toolListing, 0, len(descriptors))
	for _, descriptor := range descriptors {
		listings = append(listings, toolListing{
			Name:        descriptor.Name,
			Description: descriptor.Description,
			Path:        descriptor.Path,
			InputSchema: inputSchemaForTool(descriptor),
		})
	}
	payload := struct {
		Tools []toolListing `json:"tools"`
	}{Tools: listings}
	server.writeJSON(writer, http.StatusOK, payload)
}

func (server *HTTPServer) handleInvocation(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	toolName := strings.TrimPrefix(request.URL.Path, toolsPrefix)
	if toolName == "" || strings.Contains(toolName, "/") {
		server.writeJSON(writer, http.StatusNotFound, map[string]string{errorFieldName: "tool not found"})
		return
	}
	body, readErr := io.ReadAll(request.Body)
	if readErr != nil {
		server.writeJSON(writer, http.StatusBadRequest, map[string]string{errorFieldName: fmt.Sprintf("read request body: %v", readErr)})
		return
	}
	values, decodeErr := decodeArguments(body)
	if decodeErr != nil {
		server.writeJSON(writer, http.StatusBadRequest, map[string]string{errorFieldName: fmt.Sprintf("decode parameters: %v", decodeErr)})
		return
	}

	result := server.executionBridge.Invoke(request.Context(), toolName, values)
	if !result.Succeeded {
		server.writeJSON(writer, statusCodeForFailure(result.FailureKind), map[string]string{
			errorFieldName: result.Error,
			kindFieldName:  result.FailureKind,
		})
		return
	}
	server.writeJSON(writer, http.StatusOK, invocationResponse{Output: result.Output, Success: true})
}

func (server *HTTPServer) writeJSON(writer http.ResponseWriter, statusCode int, payload any) {
	var buffer bytes.Buffer
	if encodeErr := json.NewEncoder(&buffer).Encode(payload); encodeErr != nil {
		fallback := map[string]string{errorFieldName: fmt.Sprintf("encode response: %v", encodeErr)}
		writer.Header().Set(headerContentType, mimeTypeJSON)
		writer.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(writer).Encode(fallback)
		return
	}
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(buffer.Bytes())
}

func statusCodeForFailure(failureKind string) int {
	switch failureKind {
	case bridge.FailureKindUnknownTool:
		return http.StatusNotFound
	case bridge.FailureKindMissingParameter, bridge.FailureKindUsage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
