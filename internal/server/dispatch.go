package server

import (
	"errors"

	"github.com/danmuck/kvwire/internal/kvstore"
	"github.com/danmuck/kvwire/internal/observability"
	"github.com/danmuck/kvwire/internal/protocol"
	"github.com/rs/zerolog"
)

var ErrMissingValue = errors.New("server: set request missing value")

type result struct {
	text    string
	reply   bool
	outcome string
}

func ok(text string) result {
	return result{text: text, reply: true, outcome: observability.OutcomeOK}
}

func failed(err error) result {
	return result{text: failure(failureReason(err)), reply: true, outcome: observability.OutcomeFailed}
}

// dispatch maps one decoded packet to at most one reply. Store errors become
// failure replies; the connection stays open.
func (s *Service) dispatch(logger zerolog.Logger, pkt protocol.Packet) result {
	switch pkt.Type {
	case protocol.TypeText:
		text, _ := pkt.TextContent()
		logger.Info().Str("text", text).Msg("client text")
		return result{outcome: observability.OutcomeIgnored}
	case protocol.TypePing:
		return ok(ReplyPong)
	case protocol.TypeGet, protocol.TypeSet, protocol.TypeDel:
		req, valid := pkt.Request()
		if !valid {
			return failed(protocol.ErrBodyMismatch)
		}
		return s.dispatchRequest(logger, pkt.Type, req)
	default:
		return failed(protocol.ErrInvalidPacketType)
	}
}

func (s *Service) dispatchRequest(logger zerolog.Logger, t protocol.PacketType, req protocol.RequestBody) result {
	switch t {
	case protocol.TypeGet:
		doc, err := s.store.Get(req.Key)
		if err != nil {
			logger.Debug().Err(err).Str("key", req.Key).Msg("get failed")
			return failed(err)
		}
		return ok(doc.String())
	case protocol.TypeSet:
		value, present := req.NewValue()
		if !present {
			logger.Debug().Str("key", req.Key).Msg("set without value")
			return failed(ErrMissingValue)
		}
		if err := s.store.Put(req.Key, kvstore.RawDocument(value)); err != nil {
			logger.Debug().Err(err).Str("key", req.Key).Msg("set failed")
			return failed(err)
		}
		observability.SetStoreKeys(s.cfg.NodeID, s.store.Len())
		return ok(ReplyOk)
	case protocol.TypeDel:
		if err := s.store.Del(req.Key); err != nil {
			logger.Debug().Err(err).Str("key", req.Key).Msg("del failed")
			return failed(err)
		}
		observability.SetStoreKeys(s.cfg.NodeID, s.store.Len())
		return ok(ReplyOk)
	default:
		return failed(protocol.ErrBodyMismatch)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, kvstore.ErrKeyNotFound):
		return "key not found"
	case errors.Is(err, kvstore.ErrInvalidJSON):
		return "invalid json"
	case errors.Is(err, ErrMissingValue):
		return "missing value"
	default:
		return err.Error()
	}
}
