package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/twinfer/combo/pkg/layout"
	"github.com/twinfer/combo/pkg/text"
)

// LayoutProcessor is a Benthos processor that decodes binary messages with a
// YAML bit layout.
type LayoutProcessor struct {
	config    LayoutConfig
	loader    *layout.Loader
	logger    *service.Logger
	mDecoded  *service.MetricCounter
	mRecords  *service.MetricCounter
	mErrors   *service.MetricCounter
	mDuration *service.MetricTimer
}

// LayoutConfig contains configuration parameters for the layout processor.
type LayoutConfig struct {
	LayoutPath string `json:"layout_path" yaml:"layout_path"`
	Split      bool   `json:"split" yaml:"split"`
	Trace      bool   `json:"trace" yaml:"trace"`
}

func init() {
	err := service.RegisterProcessor(
		"combo_layout",
		layoutProcessorConfig(),
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
			return newLayoutProcessorFromConfig(conf, mgr)
		},
	)
	if err != nil {
		panic(err)
	}

	err = service.RegisterProcessor(
		"combo_match",
		matchProcessorConfig(),
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
			return newMatchProcessorFromConfig(conf, mgr)
		},
	)
	if err != nil {
		panic(err)
	}
}

func main() {
	service.RunCLI(context.Background())
}

func layoutProcessorConfig() *service.ConfigSpec {
	return service.NewConfigSpec().
		Summary("Decodes binary messages with a YAML bit layout.").
		Description("Fields are read at bit granularity in the order the layout lists them. " +
			"Decoded records replace the message content as structured data.").
		Field(service.NewStringField("layout_path").
			Description("Path to the YAML layout file.").
			Example("./layouts/header.yaml")).
		Field(service.NewBoolField("split").
			Description("Decode records back to back and emit one message per record.").
			Default(false)).
		Field(service.NewBoolField("trace").
			Description("Log every field read at debug level.").
			Default(false)).
		Version("0.1.0")
}

func newLayoutProcessorFromConfig(conf *service.ParsedConfig, mgr *service.Resources) (*LayoutProcessor, error) {
	layoutPath, err := conf.FieldString("layout_path")
	if err != nil {
		return nil, err
	}
	split, err := conf.FieldBool("split")
	if err != nil {
		return nil, err
	}
	trace, err := conf.FieldBool("trace")
	if err != nil {
		return nil, err
	}

	loader := layout.NewLoader(layout.WithCaching(0), layout.WithTrace(trace))
	if err := loader.Validate(layoutPath); err != nil {
		return nil, fmt.Errorf("invalid layout at path %s: %w", layoutPath, err)
	}

	metrics := mgr.Metrics()
	return &LayoutProcessor{
		config:    LayoutConfig{LayoutPath: layoutPath, Split: split, Trace: trace},
		loader:    loader,
		logger:    mgr.Logger(),
		mDecoded:  metrics.NewCounter("combo_decoded_messages"),
		mRecords:  metrics.NewCounter("combo_decoded_records"),
		mErrors:   metrics.NewCounter("combo_decode_errors"),
		mDuration: metrics.NewTimer("combo_decode_duration_ns"),
	}, nil
}

// Process decodes one message into one record, or into one message per
// record when split is set.
func (p *LayoutProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	data, err := msg.AsBytes()
	if err != nil {
		return p.fail(msg, fmt.Errorf("failed to get binary data from message: %w", err))
	}
	if len(data) == 0 {
		p.logger.Warn("Empty binary data provided")
		return p.fail(msg, errors.New("empty binary data provided"))
	}

	dec, err := p.loader.Load(p.config.LayoutPath)
	if err != nil {
		return p.fail(msg, fmt.Errorf("failed to load layout: %w", err))
	}

	start := time.Now()
	var recs []map[string]any
	if p.config.Split {
		recs, err = dec.DecodeAll(ctx, data)
	} else {
		var rec map[string]any
		if rec, err = dec.Decode(ctx, data); err == nil {
			recs = []map[string]any{rec}
		}
	}
	p.mDuration.Timing(time.Since(start).Nanoseconds())
	if err != nil {
		return p.fail(msg, fmt.Errorf("failed to decode %d bytes: %w", len(data), err))
	}

	p.logger.Debugf("Decoded %d records from %d bytes", len(recs), len(data))
	p.mDecoded.Incr(1)
	p.mRecords.Incr(int64(len(recs)))

	batch := make(service.MessageBatch, 0, len(recs))
	for _, rec := range recs {
		out := msg.Copy()
		out.SetStructured(jsonSafe(rec))
		out.MetaSet("combo_layout", dec.Layout().Meta.ID)
		batch = append(batch, out)
	}
	return batch, nil
}

func (p *LayoutProcessor) fail(msg *service.Message, err error) (service.MessageBatch, error) {
	p.logger.Errorf("%v", err)
	p.mErrors.Incr(1)
	msg.SetError(err)
	return service.MessageBatch{msg}, nil
}

// Close drops the compiled layouts.
func (p *LayoutProcessor) Close(ctx context.Context) error {
	p.logger.Debug("Closing layout processor and clearing layout cache")
	p.loader.ClearCache()
	return nil
}

// jsonSafe converts decoded values into the types Benthos structured
// payloads carry: integers become int64, wide integers their decimal string
// when they overflow, byte strings stay as they are.
func jsonSafe(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = jsonSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = jsonSafe(item)
		}
		return out
	case uint32:
		return int64(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case interface {
		IsInt64() bool
		Int64() int64
		String() string
	}:
		if x.IsInt64() {
			return x.Int64()
		}
		return x.String()
	default:
		return v
	}
}

// MatchProcessor tags messages whose content starts with a pattern.
type MatchProcessor struct {
	parser  *text.Parser
	metaKey string
	logger  *service.Logger
	mHits   *service.MetricCounter
	mMisses *service.MetricCounter
}

func matchProcessorConfig() *service.ConfigSpec {
	return service.NewConfigSpec().
		Summary("Matches the start of text messages against a literal or pattern.").
		Description("On a match the matched text and the index after it are stored as metadata. " +
			"Messages that do not match are flagged with an error.").
		Field(service.NewStringField("pattern").
			Description("Literal text or regular expression to match.").
			Example(`\d+`)).
		Field(service.NewStringEnumField("mode", text.Modes...).
			Description("How pattern is matched.").
			Default(text.ModeLiteral)).
		Field(service.NewStringField("meta_key").
			Description("Metadata key for the matched text. The index is stored under <meta_key>_index.").
			Default("combo_match")).
		Version("0.1.0")
}

func newMatchProcessorFromConfig(conf *service.ParsedConfig, mgr *service.Resources) (*MatchProcessor, error) {
	pattern, err := conf.FieldString("pattern")
	if err != nil {
		return nil, err
	}
	mode, err := conf.FieldString("mode")
	if err != nil {
		return nil, err
	}
	metaKey, err := conf.FieldString("meta_key")
	if err != nil {
		return nil, err
	}

	parser, err := text.NewMatcher(mode, pattern)
	if err != nil {
		return nil, err
	}

	metrics := mgr.Metrics()
	return &MatchProcessor{
		parser:  parser,
		metaKey: metaKey,
		logger:  mgr.Logger(),
		mHits:   metrics.NewCounter("combo_match_hits"),
		mMisses: metrics.NewCounter("combo_match_misses"),
	}, nil
}

// Process matches the message content from its first byte.
func (p *MatchProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	data, err := msg.AsBytes()
	if err != nil {
		msg.SetError(fmt.Errorf("failed to get message content: %w", err))
		return service.MessageBatch{msg}, nil
	}

	s := p.parser.Parse(string(data))
	if s.IsError {
		p.mMisses.Incr(1)
		msg.SetError(s.Err())
		return service.MessageBatch{msg}, nil
	}

	p.mHits.Incr(1)
	msg.MetaSet(p.metaKey, s.Result.(string))
	msg.MetaSetMut(p.metaKey+"_index", s.Index)
	return service.MessageBatch{msg}, nil
}

// Close is a no-op.
func (p *MatchProcessor) Close(ctx context.Context) error { return nil }
