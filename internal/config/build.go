package config

import (
	"context"
	"fmt"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/authenticator"
	"github.com/jmfiaschi/chewgo/internal/connector/counter"
	"github.com/jmfiaschi/chewgo/internal/connector/httpconn"
	"github.com/jmfiaschi/chewgo/internal/connector/inmemory"
	"github.com/jmfiaschi/chewgo/internal/connector/local"
	"github.com/jmfiaschi/chewgo/internal/connector/paginator"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/logging"
	"github.com/jmfiaschi/chewgo/internal/pipeline"
	"github.com/jmfiaschi/chewgo/internal/reference"
	"github.com/jmfiaschi/chewgo/internal/step"
)

// Build constructs a runnable pipeline from cfg. A counter-driven Offset
// paginator issues one Fetch (or, for the metadata counter, one Len) call
// against its bound connector before the pipeline starts, which is why
// Build takes a context.
func Build(ctx context.Context, cfg *Config, log logging.Logger) (*pipeline.Pipeline, error) {
	loader := reference.NewLoader()

	steps := make([]step.Step, 0, len(cfg.Steps))
	for i, sc := range cfg.Steps {
		s, err := buildStep(ctx, sc, loader)
		if err != nil {
			name := sc.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("config: step %q: %w", name, err)
		}
		steps = append(steps, s)
	}

	return pipeline.New(steps, cfg.ChannelCapacity, log), nil
}

func buildStep(ctx context.Context, sc StepConfig, loader *reference.Loader) (step.Step, error) {
	common := step.Common{Name: sc.Name, DataType: sc.DataType, ThreadNumber: sc.Threads}

	switch sc.Type {
	case "reader":
		if sc.Connector == nil {
			return nil, fmt.Errorf("reader requires a connector")
		}
		conn, err := buildConnector(sc.Connector)
		if err != nil {
			return nil, err
		}
		pg, err := buildPaginator(ctx, sc.Paginator, sc.Counter, conn)
		if err != nil {
			return nil, err
		}
		return &step.Reader{Common: common, Connector: conn, Paginator: pg}, nil

	case "writer":
		if sc.Connector == nil {
			return nil, fmt.Errorf("writer requires a connector")
		}
		conn, err := buildConnector(sc.Connector)
		if err != nil {
			return nil, err
		}
		return &step.Writer{Common: common, Connector: conn, BatchSize: sc.BatchSize}, nil

	case "eraser":
		if sc.Connector == nil {
			return nil, fmt.Errorf("eraser requires a connector")
		}
		conn, err := buildConnector(sc.Connector)
		if err != nil {
			return nil, err
		}
		return &step.Eraser{Common: common, Connector: conn}, nil

	case "transformer":
		refs, err := buildReferences(sc.References)
		if err != nil {
			return nil, err
		}
		return &step.Transformer{Common: common, Actions: sc.Actions, References: refs, Loader: loader}, nil

	case "validator":
		refs, err := buildReferences(sc.References)
		if err != nil {
			return nil, err
		}
		rules := make([]step.Rule, 0, len(sc.Rules))
		for _, r := range sc.Rules {
			rules = append(rules, step.Rule{Name: r.Name, Pattern: r.Pattern, Message: r.Message})
		}
		return &step.Validator{Common: common, Rules: rules, Separator: sc.Separator, References: refs, Loader: loader}, nil

	case "generator":
		return &step.Generator{Common: common, DatasetSize: sc.DatasetSize}, nil

	default:
		return nil, fmt.Errorf("unknown step type %q", sc.Type)
	}
}

func buildReferences(refs map[string]ConnectorConfig) (map[string]connector.Connector, error) {
	out := make(map[string]connector.Connector, len(refs))
	for alias, cc := range refs {
		cc := cc
		conn, err := buildConnector(&cc)
		if err != nil {
			return nil, fmt.Errorf("reference %q: %w", alias, err)
		}
		out[alias] = conn
	}
	return out, nil
}

func buildDocument(dc DocumentConfig) (document.Document, error) {
	switch dc.Format {
	case "csv":
		return document.NewCSV(dc.Metadata, dc.Flexible, document.QuoteStyle(orDefault(dc.Quote, string(document.QuoteNecessary))), document.TrimMode(orDefault(dc.Trim, string(document.TrimNone)))), nil
	case "jsonl":
		return document.NewJSONL(dc.Metadata), nil
	case "json":
		return document.NewJSON(dc.Metadata, dc.Pretty), nil
	case "yaml":
		return document.NewYAML(dc.Metadata), nil
	case "toml":
		return document.NewTOML(dc.Metadata), nil
	case "xml":
		d := document.NewXML(dc.Metadata, dc.Pretty, dc.IndentChar, dc.IndentSize)
		if dc.EntryPath != "" {
			if err := d.SetEntryPath(dc.EntryPath); err != nil {
				return nil, err
			}
		}
		return d, nil
	case "text":
		return document.NewText(dc.Metadata), nil
	case "raw":
		return document.NewRaw(dc.Metadata), nil
	default:
		return nil, fmt.Errorf("unknown document format %q", dc.Format)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func buildAuth(ac *AuthConfig) (authenticator.Authenticator, error) {
	if ac == nil {
		return authenticator.None{}, nil
	}
	switch ac.Kind {
	case "basic":
		return authenticator.Basic{Username: ac.Username, Password: ac.Password}, nil
	case "bearer":
		return authenticator.Bearer{Token: ac.Token}, nil
	case "oauth2_client_credentials":
		return authenticator.NewOAuth2ClientCredentials(ac.ClientID, ac.ClientSecret, ac.TokenURL, ac.Scopes), nil
	default:
		return nil, fmt.Errorf("unknown auth kind %q", ac.Kind)
	}
}

func buildConnector(cc *ConnectorConfig) (connector.Connector, error) {
	doc, err := buildDocument(cc.Document)
	if err != nil {
		return nil, err
	}

	switch cc.Kind {
	case "http":
		auth, err := buildAuth(cc.Auth)
		if err != nil {
			return nil, err
		}
		method := cc.Method
		if method == "" {
			method = "GET"
		}
		return httpconn.New(method, cc.Path, doc, cc.Headers, auth), nil
	case "local":
		c := local.New(cc.Path, doc)
		return c, nil
	case "inmemory":
		c := inmemory.New(cc.Seed, doc)
		c.PathTemplate = cc.Path
		return c, nil
	default:
		return nil, fmt.Errorf("unknown connector kind %q", cc.Kind)
	}
}

func buildPaginator(ctx context.Context, pc *PaginatorConfig, cc *CounterConfig, conn connector.Connector) (paginator.Paginator, error) {
	if pc == nil {
		return paginator.Once{}, nil
	}

	switch pc.Kind {
	case "once":
		return paginator.Once{}, nil
	case "wildcard":
		return paginator.Wildcard{Skip: pc.Skip, Limit: pc.Limit}, nil
	case "offset":
		count := pc.Count
		if count == 0 && cc != nil {
			n, err := buildCounter(cc).Count(ctx, conn)
			if err != nil {
				return nil, fmt.Errorf("counter: %w", err)
			}
			count = n
		}
		return paginator.Offset{Skip: pc.Skip, Limit: pc.Limit, Count: count}, nil
	case "cursor":
		return paginator.Cursor{Limit: pc.Limit, EntryPath: pc.EntryPath}, nil
	default:
		return nil, fmt.Errorf("unknown paginator kind %q", pc.Kind)
	}
}

func buildCounter(cc *CounterConfig) counter.Counter {
	switch cc.Kind {
	case "header":
		return counter.Header{Name: cc.Name}
	case "body":
		return counter.Body{EntryPath: cc.EntryPath}
	case "metadata":
		return counter.Metadata{}
	default:
		return counter.Scan{}
	}
}
