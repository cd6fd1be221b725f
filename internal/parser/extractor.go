package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/listing-parser/internal/normalizer"
)

// dictionaryCacheSize bounds how many caller-supplied dictionaries stay compiled.
const dictionaryCacheSize = 64

// Extractor turns free-text property listings into Records. It is immutable
// after construction and safe for concurrent use.
type Extractor struct {
	dictionary *SocietyDictionary
	aliasTable *AliasTable
	compiled   *lru.Cache[string, *SocietyDictionary]
	logger     *zap.Logger
}

// NewExtractor loads the embedded society dictionary and alias table.
func NewExtractor(logger *zap.Logger) (*Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dict, table, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *SocietyDictionary](dictionaryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("dictionary cache: %w", err)
	}
	return &Extractor{
		dictionary: dict,
		aliasTable: table,
		compiled:   cache,
		logger:     logger,
	}, nil
}

// DefaultDictionary returns the embedded society dictionary.
func (e *Extractor) DefaultDictionary() *SocietyDictionary { return e.dictionary }

// DefaultAliasTable returns the embedded alias table.
func (e *Extractor) DefaultAliasTable() *AliasTable { return e.aliasTable }

// Dictionary returns the compiled form of source, reusing an earlier
// compilation of identical text. Empty source selects the embedded dictionary.
func (e *Extractor) Dictionary(source string) *SocietyDictionary {
	if source == "" {
		return e.dictionary
	}
	sum := sha256.Sum256([]byte(source))
	key := hex.EncodeToString(sum[:])
	if d, ok := e.compiled.Get(key); ok {
		return d
	}
	d := ParseSocietyDictionary(source)
	e.compiled.Add(key, d)
	return d
}

// Extract parses one listing. It never fails: anything it cannot find is left
// empty in the Record.
func (e *Extractor) Extract(raw string, opts Options) Record {
	opts = opts.WithDefaults()
	text := normalizer.Clean(raw, opts.MaxInputBytes)
	if text == "" {
		return Record{}
	}

	var rec Record
	match, how := e.resolveSociety(text, opts)
	rec.Society = match.Society
	rec.PhaseBlock = match.PhaseBlock
	if rec.PhaseBlock == "" {
		rec.PhaseBlock = DetectPhaseBlock(text)
	}

	s := newScan(text)
	rec.PlotNumber = extractPlot(s)
	if price, ok := resolvePrice(s); ok {
		rec.DemandAmount = float64Ptr(price.Amount)
		rec.DemandText = price.Text
	}
	size := ExtractSize(text)
	rec.SizeValue = size.Value
	rec.SizeUnit = size.Unit
	rec.DimensionsText = size.Dimensions
	if len(s.phones) > 0 {
		rec.PhoneE164 = NormalizePhone(text[s.phones[0].Start:s.phones[0].End])
	}
	rec.Notes = ExtractNotes(text, size.Dimensions)
	rec.Flags = ExtractFlags(text)

	e.logger.Debug("Extracted listing",
		zap.String("society", rec.Society),
		zap.String("society_source", how),
		zap.String("phase_block", rec.PhaseBlock),
		zap.String("plot", rec.PlotNumber),
		zap.Strings("fields", rec.Fields()))
	return rec
}

// ExtractContext is Extract for callers carrying a context. Extraction does
// not block, so the context is only checked before starting.
func (e *Extractor) ExtractContext(ctx context.Context, raw string, opts Options) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	return e.Extract(raw, opts), nil
}

// resolveSociety runs dictionary, alias table and, when enabled, the fuzzy
// fallback. The second result names the resolver that matched.
func (e *Extractor) resolveSociety(text string, opts Options) (SocietyMatch, string) {
	dict := e.Dictionary(opts.SocietyDictionary)
	if m, ok := dict.Resolve(text, opts.BlockStyle); ok {
		return m, "dictionary"
	}
	table := opts.AliasTable
	if table == nil {
		table = e.aliasTable
	}
	if m, ok := table.Match(text); ok {
		return m, "alias_table"
	}
	if opts.FuzzySocieties {
		if m, ok := dict.FuzzyResolve(text); ok {
			return m, "fuzzy"
		}
	}
	return SocietyMatch{}, "none"
}
