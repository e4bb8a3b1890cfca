package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Status 订单状态，持久化为字符串编码
type Status string

const (
	StatusPendingPayment  Status = "pending_payment"  // 待支付
	StatusPendingShipment Status = "pending_shipment" // 待发货
	StatusShipped         Status = "shipped"          // 已发货
	StatusPendingReceive  Status = "pending_receive"  // 待收货
	StatusCompleted       Status = "completed"        // 已完成
	StatusCancelled       Status = "cancelled"        // 已取消
	StatusRefunding       Status = "refunding"        // 退款中
	StatusRefunded        Status = "refunded"         // 已退款
	StatusReturned        Status = "returned"         // 已退货
	StatusArbitration     Status = "arbitration"      // 仲裁中
)

// Operator 状态迁移的操作者角色
type Operator string

const (
	OperatorBuyer   Operator = "buyer"   // 买家
	OperatorSeller  Operator = "seller"  // 卖家
	OperatorSystem  Operator = "system"  // 系统（定时任务等）
	OperatorGateway Operator = "gateway" // 支付网关回调
)

// statusCodes 状态编码表，校验入库编码的合法性
var statusCodes = map[Status]bool{
	StatusPendingPayment:  true,
	StatusPendingShipment: true,
	StatusShipped:         true,
	StatusPendingReceive:  true,
	StatusCompleted:       true,
	StatusCancelled:       true,
	StatusRefunding:       true,
	StatusRefunded:        true,
	StatusReturned:        true,
	StatusArbitration:     true,
}

// transitions 合法迁移表：源状态 -> 目标状态 -> 允许的操作者
//
// 只有支付网关能把待支付推到待发货；买家/系统能取消待支付订单；
// 争议边（任意非终态 -> 退款中/仲裁中）单独在 CanTransition 里处理。
var transitions = map[Status]map[Status][]Operator{
	StatusPendingPayment: {
		StatusPendingShipment: {OperatorGateway},
		StatusCancelled:       {OperatorBuyer, OperatorSystem},
	},
	StatusPendingShipment: {
		StatusShipped: {OperatorSeller},
	},
	StatusShipped: {
		StatusPendingReceive: {OperatorBuyer, OperatorSystem},
	},
	StatusPendingReceive: {
		StatusCompleted: {OperatorBuyer},
		StatusRefunding: {OperatorBuyer},
	},
	StatusRefunding: {
		StatusRefunded:    {OperatorSeller, OperatorSystem},
		StatusArbitration: {OperatorBuyer, OperatorSeller},
	},
}

// terminalStatuses 终态集合
var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusCancelled: true,
	StatusRefunded:  true,
	StatusReturned:  true,
}

// IsValidStatus 编码是否合法
func IsValidStatus(s Status) bool {
	return statusCodes[s]
}

// IsTerminal 是否为终态
func IsTerminal(s Status) bool {
	return terminalStatuses[s]
}

// CanTransition 判断迁移是否合法以及操作者是否有权限
// 第一个返回值表示边是否存在，第二个表示操作者是否被授权。
func CanTransition(from, to Status, op Operator) (legal bool, allowed bool) {
	// 争议边：任意非终态都可以进入退款中/仲裁中
	if (to == StatusRefunding || to == StatusArbitration) && !IsTerminal(from) && from != to {
		if targets, ok := transitions[from]; ok {
			if ops, ok := targets[to]; ok {
				return true, operatorIn(op, ops)
			}
		}
		// 表里没有显式声明的争议边：买家可发起退款，买卖双方可发起仲裁
		if to == StatusRefunding {
			return true, op == OperatorBuyer
		}
		return true, op == OperatorBuyer || op == OperatorSeller
	}

	targets, ok := transitions[from]
	if !ok {
		return false, false
	}
	ops, ok := targets[to]
	if !ok {
		return false, false
	}
	return true, operatorIn(op, ops)
}

func operatorIn(op Operator, ops []Operator) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// CanEvaluate 订单是否可评价（仅限已完成）
func (o *Order) CanEvaluate() bool {
	return Status(o.Status) == StatusCompleted
}

// PayExpired 是否已过支付截止时间
func (o *Order) PayExpired(now time.Time) bool {
	return o.PayExpireAt != nil && now.After(*o.PayExpireAt)
}

// GenerateOrderNo 生成订单号
func GenerateOrderNo() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(1000000))
	return fmt.Sprintf("%s%06d", time.Now().Format("20060102150405"), n.Int64())
}
