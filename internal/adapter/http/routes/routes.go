package routes

import (
	"context"
	"log"
	"os"
	"strconv"

	"tripmarket/internal/adapter/http/handlers"
	"tripmarket/internal/adapter/persistence/repository"
	"tripmarket/internal/circuitbreaker"
	"tripmarket/internal/domain/fees"
	"tripmarket/internal/idempotency"
	"tripmarket/internal/infrastructure/database"
	"tripmarket/internal/infrastructure/events"
	"tripmarket/internal/infrastructure/payments"
	"tripmarket/internal/queue"
	"tripmarket/internal/usecase"
	"tripmarket/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
)

var router = gin.Default()

const PORT = 8080

// Run wires the dependency graph, starts the refund consumer and serves HTTP.
func Run() {
	setMiddlewares()

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()

	bookingRepo := repository.NewBookingDynamoRepository(ddb)
	refundRepo := repository.NewRefundDynamoRepository(ddb)
	auditRepo := repository.NewAuditDynamoRepository(ddb)
	deadLetterRepo := repository.NewDeadLetterDynamoRepository(ddb)

	// Redis makes the idempotency window shared across instances; without it
	// the in-memory store still covers a single instance.
	var store idempotency.Store
	if rdb := database.ConnectRedis(); rdb != nil {
		store = repository.NewRedisIdempotencyStore(rdb)
	} else {
		log.Printf("Redis unavailable, using in-memory idempotency store")
		store = idempotency.NewMemoryStore()
	}
	guard := idempotency.NewGuard(store)

	breakers := circuitbreaker.NewManager()

	var publisher interfaces.IEventPublisher
	rmq, err := events.NewRabbitMQPublisher(events.BrokerURL())
	if err != nil {
		log.Printf("RabbitMQ publisher not configured: %v", err)
	} else {
		publisher = rmq
	}
	emitter := usecase.NewEventEmitter(publisher, deadLetterRepo, breakers.GetOrCreate("event-bus", circuitbreaker.DefaultConfig()))

	var processor interfaces.IPaymentProcessor
	mp, err := payments.NewMercadoPagoProcessor(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"))
	if err != nil {
		log.Printf("Mercado Pago processor not configured: %v", err)
	} else {
		processor = mp
	}

	calc := fees.NewCalculator(fees.ConfigFromEnv())

	bookingUseCase := usecase.NewBookingUseCase(bookingRepo, auditRepo, processor, guard, breakers, emitter, calc)
	refundUseCase := usecase.NewRefundUseCase(refundRepo, bookingRepo, auditRepo, processor, guard, breakers, emitter, calc)
	deadLetterUseCase := usecase.NewDeadLetterUseCase(deadLetterRepo, publisher)

	if publisher != nil {
		go queue.StartRefundConsumer(context.Background(), events.BrokerURL(), events.ExchangeName, refundUseCase)
	} else {
		log.Printf("Refund consumer disabled: no event bus connection")
	}

	bookingHandler := handlers.NewBookingHandler(bookingUseCase)
	refundHandler := handlers.NewRefundHandler(refundUseCase)
	webhookHandler := handlers.NewWebhookHandler(bookingUseCase, processor)
	deadLetterHandler := handlers.NewDeadLetterHandler(deadLetterUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addBookingRoutes(v1, bookingHandler, refundHandler, webhookHandler, deadLetterHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
