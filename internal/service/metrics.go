package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storageOperationsTotal 按操作与结果统计存储调用次数
var storageOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ossbridge_storage_operations_total",
		Help: "Total number of object storage operations",
	},
	[]string{"op", "status"},
)

func observeStorage(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	storageOperationsTotal.WithLabelValues(op, status).Inc()
}
