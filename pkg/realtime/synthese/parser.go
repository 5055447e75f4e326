package synthese

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/ctdf"
	"github.com/travigo/rtproxy/pkg/util"
	"golang.org/x/net/html/charset"
)

// ErrInvalidDocument is the one failure that is returned to callers instead of degrading
// to no data: the provider answered but with something we cannot read
var ErrInvalidDocument = errors.New("invalid realtime feed document")

const realTimeFlag = "yes"

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"20060102T150405",
	"2006-Jan-02 15:04:05",
}

// Journey is one journey element of a feed document
type Journey struct {
	RouteID  string
	StopID   string
	DateTime string
	RealTime string

	HasStop bool
}

type journeyElement struct {
	RouteID  string `xml:"routeId,attr"`
	DateTime string `xml:"dateTime,attr"`
	RealTime string `xml:"realTime,attr"`

	Stop *struct {
		ID string `xml:"id,attr"`
	} `xml:"stop"`
}

func (e journeyElement) journey() Journey {
	journey := Journey{
		RouteID:  e.RouteID,
		DateTime: e.DateTime,
		RealTime: e.RealTime,
	}

	if e.Stop != nil {
		journey.HasStop = true
		journey.StopID = e.Stop.ID
	}

	return journey
}

// Journeys lazily walks the journey elements directly under the root element. Ranging
// over the sequence again decodes the document from the start.
func Journeys(document []byte) iter.Seq2[Journey, error] {
	return func(yield func(Journey, error) bool) {
		decoder := xml.NewDecoder(bytes.NewReader(document))
		decoder.CharsetReader = charset.NewReaderLabel

		depth := 0
		seenRoot := false

		for {
			token, err := decoder.Token()
			if err == io.EOF {
				if !seenRoot {
					yield(Journey{}, fmt.Errorf("%w: no root element", ErrInvalidDocument))
				}
				return
			} else if err != nil {
				yield(Journey{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err))
				return
			}

			switch element := token.(type) {
			case xml.StartElement:
				if depth == 0 {
					if seenRoot {
						yield(Journey{}, fmt.Errorf("%w: more than one root element", ErrInvalidDocument))
						return
					}
					seenRoot = true
				} else if depth == 1 && element.Name.Local == "journey" {
					var journey journeyElement
					if err := decoder.DecodeElement(&journey, &element); err != nil {
						yield(Journey{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err))
						return
					}

					if !yield(journey.journey(), nil) {
						return
					}
					continue
				}

				depth++
			case xml.EndElement:
				depth--
			case xml.CharData:
				if depth == 0 && len(bytes.TrimSpace(element)) > 0 {
					yield(Journey{}, fmt.Errorf("%w: text outside of the root element", ErrInvalidDocument))
					return
				}
			}
		}
	}
}

type Parser struct {
	ProviderID string
	Location   *time.Location
}

// Parse groups the passages of a feed document by route point, keeping document order.
// Journeys without a routeId belong to no route point and are left out.
func (p *Parser) Parse(document []byte) (map[RoutePointKey][]ctdf.RealTimePassage, error) {
	passages := map[RoutePointKey][]ctdf.RealTimePassage{}

	for journey, err := range Journeys(document) {
		if err != nil {
			log.Error().Err(err).Str("id", p.ProviderID).Msg("Invalid realtime feed document")
			return nil, err
		}

		if journey.RouteID == "" {
			log.Debug().Str("id", p.ProviderID).Str("stop", journey.StopID).Msg("Journey has no routeId, skipping")
			continue
		}

		if !journey.HasStop {
			log.Debug().Str("id", p.ProviderID).Str("route", journey.RouteID).Msg("Journey has no stop element")
		}

		passage, err := p.passage(journey)
		if err != nil {
			log.Error().Err(err).Str("id", p.ProviderID).Msg("Invalid journey in realtime feed document")
			return nil, err
		}

		key := RoutePointKey{RouteID: journey.RouteID, StopID: journey.StopID}
		passages[key] = append(passages[key], passage)
	}

	return passages, nil
}

func (p *Parser) passage(journey Journey) (ctdf.RealTimePassage, error) {
	localDateTime, err := parseDateTime(journey.DateTime)
	if err != nil {
		return ctdf.RealTimePassage{}, err
	}

	passage := ctdf.NewRealTimePassage(util.LocalToUTC(localDateTime, p.Location), journey.RealTime == realTimeFlag)
	passage.RouteRef = journey.RouteID
	passage.StopRef = journey.StopID

	return passage, nil
}

func parseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unreadable journey dateTime %q", ErrInvalidDocument, value)
}
