package config

import (
	"github.com/IBM/sarama"
)

// NewKafkaProducer returns nil without error when KAFKA_BROKERS is unset.
func NewKafkaProducer(cfg Config) (sarama.SyncProducer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, nil
	}
	sc := sarama.NewConfig()
	sc.ClientID = "travel-backend"
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Idempotent = true
	sc.Producer.Return.Successes = true
	sc.Net.MaxOpenRequests = 1
	return sarama.NewSyncProducer(cfg.KafkaBrokers, sc)
}
