// Package sinkkafka implements the Kafka sink backend — a concrete sink
// connector for the `type = kafka` connector kind (§6).
package sinkkafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
	"github.com/xdg-go/scram"

	"wparse/internal/wpl"
)

// Config is the connector-level configuration for a Kafka sink instance.
type Config struct {
	Brokers     []string
	Topic       string
	Compression string // none, gzip, snappy, lz4, zstd
	SASLUser    string
	SASLPass    string
}

// Sink produces each record/string as one Kafka message via an async
// producer, matching the teacher's kafka sink's logging/error-count shape.
type Sink struct {
	topic    string
	producer sarama.AsyncProducer
	logger   *logrus.Entry
}

type xdgSCRAMClient struct {
	*scram.Client
	*scram.ClientConversation
	scram.HashGeneratorFcn
}

func (c *xdgSCRAMClient) Begin(userName, password, authzID string) (err error) {
	c.Client, err = c.HashGeneratorFcn.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	c.ClientConversation = c.Client.NewConversation()
	return nil
}

func (c *xdgSCRAMClient) Step(challenge string) (response string, err error) {
	response, err = c.ClientConversation.Step(challenge)
	return
}

func (c *xdgSCRAMClient) Done() bool {
	return c.ClientConversation.Done()
}

// New builds a Kafka sink connected to cfg.Brokers, producing to cfg.Topic.
func New(cfg Config) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("sinkkafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("sinkkafka: no topic configured")
	}
	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Return.Successes = false
	sc.Producer.Return.Errors = true
	sc.Producer.Compression = compressionFromString(cfg.Compression)

	if cfg.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		sc.Net.SASL.User = cfg.SASLUser
		sc.Net.SASL.Password = cfg.SASLPass
		sc.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &xdgSCRAMClient{HashGeneratorFcn: scram.SHA256}
		}
	}

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("sinkkafka: new producer: %w", err)
	}

	s := &Sink{
		topic:    cfg.Topic,
		producer: producer,
		logger:   logrus.WithFields(logrus.Fields{"component": "routing.sinkkafka", "topic": cfg.Topic}),
	}
	go s.drainErrors()
	return s, nil
}

func compressionFromString(name string) sarama.CompressionCodec {
	switch name {
	case "gzip":
		return sarama.CompressionGZIP
	case "snappy":
		return sarama.CompressionSnappy
	case "lz4":
		return sarama.CompressionLZ4
	case "zstd":
		return sarama.CompressionZSTD
	default:
		return sarama.CompressionNone
	}
}

func (s *Sink) drainErrors() {
	for perr := range s.producer.Errors() {
		s.logger.WithError(perr.Err).Warn("kafka produce failed")
	}
}

func (s *Sink) send(b []byte) error {
	s.producer.Input() <- &sarama.ProducerMessage{
		Topic: s.topic,
		Value: sarama.ByteEncoder(b),
	}
	return nil
}

func (s *Sink) SinkRecord(ctx context.Context, r *wpl.DataRecord) error {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value.String()
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.send(b)
}

func (s *Sink) SinkRecords(ctx context.Context, rs []*wpl.DataRecord) error {
	for _, r := range rs {
		if err := s.SinkRecord(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) SinkStr(ctx context.Context, str string) error { return s.send([]byte(str)) }
func (s *Sink) SinkBytes(ctx context.Context, b []byte) error { return s.send(b) }

func (s *Sink) Stop(ctx context.Context) error {
	return s.producer.Close()
}

func (s *Sink) Reconnect(ctx context.Context) error {
	return nil
}
