package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"rollcall-attendance-go/logger"
	"rollcall-attendance-go/models"
)

const (
	classesKey       = "classes"     // Set: Stores all imported class names
	classInfoPrefix  = "class:"      // Hash prefix: class:{name} -> stores class details
	attendancePrefix = "attendance:" // Hash prefix: attendance:{class}:{date} -> student ID to "1"/"0"

	component = "redis"
)

// RedisService keeps unsaved attendance marks and the class registry in Redis
// so a restarted session can recover them
type RedisService struct {
	Client *redis.Client
	TTL    time.Duration // Lifetime of an attendance hash; 0 keeps it forever
	log    logger.Logger
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisService {
	return &RedisService{
		Client: client,
		TTL:    ttl,
		log:    log,
	}
}

// Helper to generate class info key
func getClassInfoKey(className string) string {
	return classInfoPrefix + className
}

// Helper to generate the per-day attendance hash key
func getAttendanceKey(className, date string) string {
	return attendancePrefix + className + ":" + date
}

// --- Class Registry ---

// RegisterClass records an imported class and its source file
func (s *RedisService) RegisterClass(ctx context.Context, clazz models.Clazz) error {
	if clazz.Name == "" || clazz.Path == "" {
		return errors.New("class name and path cannot be empty")
	}
	pipe := s.Client.Pipeline()

	// Add class name to the global set of classes
	pipe.SAdd(ctx, classesKey, clazz.Name)
	// Store class details in a Hash
	pipe.HSet(ctx, getClassInfoKey(clazz.Name), map[string]interface{}{
		"name": clazz.Name,
		"path": clazz.Path,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register class in Redis: %w", err)
	}
	s.log.Debug(component, "registered class", map[string]interface{}{"class": clazz.Name, "path": clazz.Path})
	return nil
}

// GetClass retrieves a registered class by name; nil when unknown
func (s *RedisService) GetClass(ctx context.Context, className string) (*models.Clazz, error) {
	data, err := s.Client.HGetAll(ctx, getClassInfoKey(className)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get class from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &models.Clazz{Name: data["name"], Path: data["path"]}, nil
}

// GetAllClasses retrieves every registered class, sorted by name
func (s *RedisService) GetAllClasses(ctx context.Context) ([]models.Clazz, error) {
	names, err := s.Client.SMembers(ctx, classesKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Clazz{}, nil
		}
		return nil, fmt.Errorf("failed to get class names from Redis: %w", err)
	}

	classes := make([]models.Clazz, 0, len(names))
	for _, name := range names {
		clazz, err := s.GetClass(ctx, name)
		if err != nil {
			// Log the error but continue trying to fetch others
			s.log.Error(component, err, map[string]interface{}{"class": name})
			continue
		}
		if clazz != nil {
			classes = append(classes, *clazz)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

// UnregisterClass drops a class from the registry
func (s *RedisService) UnregisterClass(ctx context.Context, className string) error {
	pipe := s.Client.Pipeline()
	pipe.SRem(ctx, classesKey, className)
	pipe.Del(ctx, getClassInfoKey(className))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to unregister class %s: %w", className, err)
	}
	return nil
}

// --- Attendance Marks ---

// SetStatus stores one student's mark for the given day
func (s *RedisService) SetStatus(ctx context.Context, className, date, studentID string, present bool) error {
	key := getAttendanceKey(className, date)
	value := "0"
	if present {
		value = "1"
	}

	pipe := s.Client.Pipeline()
	pipe.HSet(ctx, key, studentID, value)
	if s.TTL > 0 {
		pipe.Expire(ctx, key, s.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store status for %s in class %s: %w", studentID, className, err)
	}
	return nil
}

// LoadStatuses returns the marks stored for a class on the given day
func (s *RedisService) LoadStatuses(ctx context.Context, className, date string) (map[string]bool, error) {
	data, err := s.Client.HGetAll(ctx, getAttendanceKey(className, date)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load statuses for class %s: %w", className, err)
	}

	statuses := make(map[string]bool, len(data))
	for id, v := range data {
		statuses[id] = v == "1"
	}
	return statuses, nil
}

// --- Utility ---

// InitializeRedisClient creates a client and pings the server
func InitializeRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Ping Redis to check connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}
