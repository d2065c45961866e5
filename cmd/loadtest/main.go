package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DevYoma/zora-be/internal/adapter/chain"
	"github.com/DevYoma/zora-be/internal/adapter/storage"
	"github.com/DevYoma/zora-be/internal/config"
	"github.com/DevYoma/zora-be/internal/core/domain"
	"github.com/DevYoma/zora-be/internal/core/service"
)

const (
	ticketQuantity = 20
	totalRequests  = 50
)

// Hammers one fresh event with more concurrent purchases than it has
// tickets and checks that exactly ticketQuantity of them succeed.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	logger := logrus.New()
	eventService := service.NewEventService(mysqlAdapter, redisAdapter, logger)
	ticketService := service.NewTicketService(mysqlAdapter, redisAdapter, chain.UnconfiguredVerifier{}, logger, false)

	event, err := eventService.CreateEvent(ctx, domain.Event{
		Name:              fmt.Sprintf("loadtest-%d", time.Now().Unix()),
		Date:              "2026-12-31",
		Time:              "20:00",
		Location:          "loadtest",
		TicketPrice:       1,
		TicketQuantity:    ticketQuantity,
		CollectionAddress: "0x0000000000000000000000000000000000000001",
		CreatorAddress:    "0x0000000000000000000000000000000000000002",
		TransactionHash:   uuid.NewString(),
	})
	if err != nil {
		log.Fatalf("failed to create event: %v", err)
	}

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(buyer int) {
			defer wg.Done()

			_, err := ticketService.Purchase(ctx, service.PurchaseRequest{
				EventID:      event.ID,
				BuyerAddress: fmt.Sprintf("0x%040x", buyer+1),
				Quantity:     1,
				TxHash:       uuid.NewString(),
			})
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== LOAD TEST RESULTS ==========")
	fmt.Printf("Ticket Quantity:  %d\n", ticketQuantity)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=======================================")

	if success == int32(ticketQuantity) && fail == int32(totalRequests-ticketQuantity) {
		fmt.Printf("PASS: Exactly %d purchases succeeded, %d failed\n", ticketQuantity, totalRequests-ticketQuantity)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			ticketQuantity, totalRequests-ticketQuantity, success, fail)
	}

	final, err := eventService.GetEvent(ctx, event.ID)
	if err != nil {
		log.Fatalf("failed to reload event: %v", err)
	}
	fmt.Printf("Final available tickets: %d\n", final.AvailableTickets)

	if final.AvailableTickets == 0 {
		fmt.Println("PASS: Inventory depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected 0 available, got %d\n", final.AvailableTickets)
	}
}
