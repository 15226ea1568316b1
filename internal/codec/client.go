package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region methods
// Full method names served by the remote collaborator. Requests and
// replies are google.protobuf.Struct messages.
const (
	MethodSearch    = "/entryscout.v1.Collaborator/Search"
	MethodMacro     = "/entryscout.v1.Collaborator/Macro"
	MethodSummarize = "/entryscout.v1.Collaborator/SummarizeCompany"
)

// #endregion methods

// #region client-struct
// CollaboratorClient talks to a remote evidence/macro/summary service.
type CollaboratorClient struct {
	conn    *grpc.ClientConn
	cc      grpc.ClientConnInterface
	timeout time.Duration
	logger  *zap.Logger
}

// #endregion client-struct

// #region constructor
// NewCollaboratorClient connects to the collaborator gRPC server.
// timeout bounds each call; zero leaves calls bounded by the caller's context.
func NewCollaboratorClient(addr string, timeout time.Duration, logger *zap.Logger) (*CollaboratorClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	c := NewCollaboratorClientWithConn(conn, timeout, logger)
	c.conn = conn
	return c, nil
}

// NewCollaboratorClientWithConn creates a client over an existing connection.
// Used for testing without a real gRPC server.
func NewCollaboratorClientWithConn(cc grpc.ClientConnInterface, timeout time.Duration, logger *zap.Logger) *CollaboratorClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollaboratorClient{cc: cc, timeout: timeout, logger: logger.Named("collaborator")}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if the client owns one.
func (c *CollaboratorClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region invoke
func (c *CollaboratorClient) invoke(ctx context.Context, method string, req map[string]any, out any) error {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	reply := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, method, in, reply); err != nil {
		return err
	}
	b, err := protojson.Marshal(reply)
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// #endregion invoke

// #region search
// SearchPages runs an evidence search on the collaborator.
func (c *CollaboratorClient) SearchPages(ctx context.Context, query string, limit int) ([]state.Page, error) {
	var resp struct {
		Pages []state.Page `json:"pages"`
	}
	if err := c.invoke(ctx, MethodSearch, map[string]any{"query": query, "limit": limit}, &resp); err != nil {
		return nil, fmt.Errorf("search rpc: %w", err)
	}
	if len(resp.Pages) > limit && limit > 0 {
		resp.Pages = resp.Pages[:limit]
	}
	return resp.Pages, nil
}

// Search satisfies websearch.Searcher: failures are logged and yield nil.
func (c *CollaboratorClient) Search(ctx context.Context, query string, limit int) []state.Page {
	pages, err := c.SearchPages(ctx, query, limit)
	if err != nil {
		c.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return pages
}

// #endregion search

// #region macro
// FetchMacro asks the collaborator for a country's macro indicators.
func (c *CollaboratorClient) FetchMacro(ctx context.Context, country string) (state.MacroIndicators, error) {
	var m state.MacroIndicators
	if err := c.invoke(ctx, MethodMacro, map[string]any{"country": country}, &m); err != nil {
		return state.MacroIndicators{}, fmt.Errorf("macro rpc: %w", err)
	}
	return m, nil
}

// Macro satisfies macro.Provider: failures are logged and yield zeros.
func (c *CollaboratorClient) Macro(ctx context.Context, country string) state.MacroIndicators {
	m, err := c.FetchMacro(ctx, country)
	if err != nil {
		c.logger.Warn("macro lookup failed", zap.String("country", country), zap.Error(err))
		return state.MacroIndicators{}
	}
	return m
}

// #endregion macro

// #region summarize
// Summarize asks the collaborator to turn page text into a company profile.
func (c *CollaboratorClient) Summarize(ctx context.Context, name, notes, text string) (state.CompanyProfile, error) {
	var p state.CompanyProfile
	req := map[string]any{"name": name, "notes": notes, "text": text}
	if err := c.invoke(ctx, MethodSummarize, req, &p); err != nil {
		return state.CompanyProfile{}, fmt.Errorf("summarize rpc: %w", err)
	}
	return p, nil
}

// #endregion summarize
