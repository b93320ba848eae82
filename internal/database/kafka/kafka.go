package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"trivai/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Client 持有 Kafka writer 的单例实例。
// 本服务只生产事件，不消费。管理操作每次单独建立连接，不依赖长连接的存活。
type Client struct {
	Writer *kafka.Writer
	Config *config.KafkaConfig
	dialer *kafka.Dialer
}

var (
	mu     sync.Mutex
	client *Client
)

// GetClient 返回共享的 Kafka 客户端，首次调用时连接集群，主题不存在则自动创建。
// 初始化失败不会被缓存，下一次调用会重新尝试。
func GetClient(ctx context.Context, cfg *config.KafkaConfig) (*Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		return client, nil
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("未配置 Kafka brokers")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("未配置 Kafka topic")
	}

	c := &Client{Config: cfg, dialer: &kafka.Dialer{Timeout: 5 * time.Second}}
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("kafka 初始化连接失败: %w", err)
	}
	err = ensureTopic(conn, cfg.Topic)
	conn.Close()
	if err != nil {
		return nil, err
	}

	c.Writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
	logrus.WithField("topic", cfg.Topic).Info("成功初始化 Kafka 客户端")
	client = c
	return client, nil
}

// ensureTopic 检查主题是否存在，不存在则以单分区创建。
func ensureTopic(conn *kafka.Conn, topic string) error {
	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
	}
	for _, p := range partitions {
		if p.Topic == topic {
			return nil
		}
	}
	logrus.WithField("topic", topic).Info("主题不存在，准备创建")
	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}); err != nil {
		return fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
	}
	return nil
}

// Close 关闭 writer，之后的 GetClient 会重新初始化。
func (c *Client) Close() error {
	if c == nil || c.Writer == nil {
		return nil
	}
	mu.Lock()
	if client == c {
		client = nil
	}
	mu.Unlock()
	if err := c.Writer.Close(); err != nil {
		return fmt.Errorf("关闭 Kafka writer 失败: %w", err)
	}
	return nil
}

// dial 依次尝试每个 broker，返回第一个建立成功的连接。
func (c *Client) dial(ctx context.Context) (*kafka.Conn, error) {
	if c == nil || c.Config == nil || len(c.Config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka 客户端未初始化")
	}
	dialer := c.dialer
	if dialer == nil {
		dialer = kafka.DefaultDialer
	}
	var lastErr error
	for _, broker := range c.Config.Brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err == nil {
			if deadline, ok := ctx.Deadline(); ok {
				_ = conn.SetDeadline(deadline)
			}
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("无法连接任何 Kafka broker: %w", lastErr)
}

// HealthCheck 新建连接检查集群是否可达，以及事件主题是否存在。
func (c *Client) HealthCheck(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(c.Config.Topic)
	if err != nil {
		return fmt.Errorf("无法读取 Kafka 主题 %s: %w", c.Config.Topic, err)
	}
	if len(partitions) == 0 {
		return fmt.Errorf("kafka 主题 %s 没有可用分区", c.Config.Topic)
	}
	return nil
}

// ControllerAddress 返回 Kafka 控制器的地址。
func (c *Client) ControllerAddress(ctx context.Context) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)), nil
}
