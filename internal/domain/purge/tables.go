package purge

// Registry declara cada tabla que referencia a un tenant, agrupada por
// dominio. After nombra las tablas hijas que deben purgarse primero; el orden
// final lo calcula BuildPlan, no esta lista.
//
// Las tablas de unión sin company_id propio se purgan vía subselect sobre su
// tabla padre (que todavía existe en ese punto de la transacción).
var Registry = []Table{
	// ── Mensajería ────────────────────────────────────────────────────────
	{Name: "message_logs", SQL: "DELETE FROM message_logs WHERE company_id = $1"},
	{Name: "campaign_contacts", SQL: "DELETE FROM campaign_contacts WHERE campaign_id IN (SELECT id FROM campaigns WHERE company_id = $1)"},
	{Name: "messages", SQL: "DELETE FROM messages WHERE company_id = $1", After: []string{"message_logs"}},
	{Name: "conversations", SQL: "DELETE FROM conversations WHERE company_id = $1", After: []string{"messages"}},
	{Name: "campaigns", SQL: "DELETE FROM campaigns WHERE company_id = $1", After: []string{"campaign_contacts"}},
	{Name: "contacts", SQL: "DELETE FROM contacts WHERE company_id = $1", After: []string{"conversations", "campaign_contacts"}},

	// ── CRM ───────────────────────────────────────────────────────────────
	{Name: "follow_ups", SQL: "DELETE FROM follow_ups WHERE company_id = $1"},
	{Name: "appointments", SQL: "DELETE FROM appointments WHERE company_id = $1"},
	{Name: "lead_tags", SQL: "DELETE FROM lead_tags WHERE lead_id IN (SELECT id FROM leads WHERE company_id = $1)"},
	{Name: "tags", SQL: "DELETE FROM tags WHERE company_id = $1", After: []string{"lead_tags"}},
	{Name: "professional_insurance_configs", SQL: "DELETE FROM professional_insurance_configs WHERE professional_id IN (SELECT id FROM professionals WHERE company_id = $1)"},
	{Name: "professionals", SQL: "DELETE FROM professionals WHERE company_id = $1", After: []string{"professional_insurance_configs", "appointments"}},
	{Name: "insurance_plans", SQL: "DELETE FROM insurance_plans WHERE company_id = $1", After: []string{"professional_insurance_configs"}},

	// ── Finanzas ──────────────────────────────────────────────────────────
	{Name: "sale_items", SQL: "DELETE FROM sale_items WHERE sale_id IN (SELECT id FROM sales WHERE company_id = $1)"},
	{Name: "receivables", SQL: "DELETE FROM receivables WHERE company_id = $1"},
	{Name: "payments", SQL: "DELETE FROM payments WHERE company_id = $1"},
	{Name: "sales", SQL: "DELETE FROM sales WHERE company_id = $1", After: []string{"sale_items", "receivables", "payments"}},
	{Name: "inventory_movements", SQL: "DELETE FROM inventory_movements WHERE company_id = $1"},
	{Name: "inventory_items", SQL: "DELETE FROM inventory_items WHERE company_id = $1", After: []string{"inventory_movements"}},
	{Name: "suppliers", SQL: "DELETE FROM suppliers WHERE company_id = $1", After: []string{"inventory_items"}},
	{Name: "transactions", SQL: "DELETE FROM transactions WHERE company_id = $1"},
	{Name: "finance_categories", SQL: "DELETE FROM finance_categories WHERE company_id = $1", After: []string{"transactions"}},
	{Name: "cost_centers", SQL: "DELETE FROM cost_centers WHERE company_id = $1", After: []string{"transactions"}},

	// ── Vertical: restaurante ─────────────────────────────────────────────
	{Name: "restaurant_order_items", SQL: "DELETE FROM restaurant_order_items WHERE order_id IN (SELECT id FROM restaurant_orders WHERE company_id = $1)"},
	{Name: "restaurant_deliveries", SQL: "DELETE FROM restaurant_deliveries WHERE order_id IN (SELECT id FROM restaurant_orders WHERE company_id = $1)"},
	{Name: "restaurant_orders", SQL: "DELETE FROM restaurant_orders WHERE company_id = $1", After: []string{"restaurant_order_items", "restaurant_deliveries"}},
	{Name: "menu_items", SQL: "DELETE FROM menu_items WHERE company_id = $1", After: []string{"restaurant_order_items"}},
	{Name: "menu_categories", SQL: "DELETE FROM menu_categories WHERE company_id = $1", After: []string{"menu_items"}},
	{Name: "restaurant_tables", SQL: "DELETE FROM restaurant_tables WHERE company_id = $1", After: []string{"restaurant_orders"}},

	// ── Vertical: lava-jato ───────────────────────────────────────────────
	{Name: "carwash_service_orders", SQL: "DELETE FROM carwash_service_orders WHERE company_id = $1"},
	{Name: "carwash_appointments", SQL: "DELETE FROM carwash_appointments WHERE company_id = $1", After: []string{"carwash_service_orders"}},
	{Name: "carwash_subscriptions", SQL: "DELETE FROM carwash_subscriptions WHERE company_id = $1", After: []string{"carwash_appointments"}},
	{Name: "carwash_vehicles", SQL: "DELETE FROM carwash_vehicles WHERE company_id = $1", After: []string{"carwash_service_orders", "carwash_appointments", "carwash_subscriptions"}},
	{Name: "carwash_boxes", SQL: "DELETE FROM carwash_boxes WHERE company_id = $1", After: []string{"carwash_service_orders"}},
	{Name: "carwash_services", SQL: "DELETE FROM carwash_services WHERE company_id = $1", After: []string{"carwash_service_orders", "carwash_appointments"}},
	{Name: "carwash_plans", SQL: "DELETE FROM carwash_plans WHERE company_id = $1", After: []string{"carwash_subscriptions"}},

	// ── Leads / pipeline ──────────────────────────────────────────────────
	// Los leads van después de todo lo que los referencia y antes de stages.
	{Name: "leads", SQL: "DELETE FROM leads WHERE company_id = $1", After: []string{"appointments", "sales", "follow_ups", "lead_tags", "conversations", "campaign_contacts"}},
	{Name: "crm_stages", SQL: "DELETE FROM crm_stages WHERE company_id = $1", After: []string{"leads"}},

	// ── Automatización ────────────────────────────────────────────────────
	{Name: "bot_sessions", SQL: "DELETE FROM bot_sessions WHERE bot_id IN (SELECT id FROM bots WHERE company_id = $1)"},
	{Name: "bot_instances", SQL: "DELETE FROM bot_instances WHERE bot_id IN (SELECT id FROM bots WHERE company_id = $1)"},
	{Name: "bot_edges", SQL: "DELETE FROM bot_edges WHERE bot_id IN (SELECT id FROM bots WHERE company_id = $1)"},
	{Name: "bot_nodes", SQL: "DELETE FROM bot_nodes WHERE bot_id IN (SELECT id FROM bots WHERE company_id = $1)", After: []string{"bot_edges"}},
	{Name: "bots", SQL: "DELETE FROM bots WHERE company_id = $1", After: []string{"bot_sessions", "bot_instances", "bot_edges", "bot_nodes"}},
	{Name: "ai_agents", SQL: "DELETE FROM ai_agents WHERE company_id = $1", After: []string{"bots"}},

	// ── Planificación ─────────────────────────────────────────────────────
	{Name: "task_history", SQL: "DELETE FROM task_history WHERE task_id IN (SELECT id FROM tasks WHERE company_id = $1)"},
	{Name: "tasks", SQL: "DELETE FROM tasks WHERE company_id = $1", After: []string{"task_history"}},
	{Name: "roadmap_comments", SQL: "DELETE FROM roadmap_comments WHERE roadmap_item_id IN (SELECT id FROM roadmap_items WHERE company_id = $1)"},
	{Name: "roadmap_items", SQL: "DELETE FROM roadmap_items WHERE company_id = $1", After: []string{"roadmap_comments"}},
	{Name: "entity_links", SQL: "DELETE FROM entity_links WHERE company_id = $1"},

	// ── Workflows / FAQ / templates ───────────────────────────────────────
	{Name: "workflow_executions", SQL: "DELETE FROM workflow_executions WHERE workflow_id IN (SELECT id FROM workflows WHERE company_id = $1)"},
	{Name: "workflows", SQL: "DELETE FROM workflows WHERE company_id = $1", After: []string{"workflow_executions"}},
	{Name: "faqs", SQL: "DELETE FROM faqs WHERE company_id = $1"},
	{Name: "message_templates", SQL: "DELETE FROM message_templates WHERE company_id = $1", After: []string{"campaigns"}},

	// ── Observabilidad ────────────────────────────────────────────────────
	{Name: "alerts", SQL: "DELETE FROM alerts WHERE company_id = $1"},
	{Name: "system_logs", SQL: "DELETE FROM system_logs WHERE company_id = $1"},
	{Name: "audit_logs", SQL: "DELETE FROM audit_logs WHERE company_id = $1"},
	{Name: "settings", SQL: "DELETE FROM settings WHERE company_id = $1"},

	// ── Facturación de la plataforma ──────────────────────────────────────
	{Name: "invoices", SQL: "DELETE FROM invoices WHERE subscription_id IN (SELECT id FROM subscriptions WHERE company_id = $1)"},
	{Name: "subscriptions", SQL: "DELETE FROM subscriptions WHERE company_id = $1", After: []string{"invoices"}},
	{Name: "usage_records", SQL: "DELETE FROM usage_records WHERE company_id = $1"},
	{Name: "goals", SQL: "DELETE FROM goals WHERE company_id = $1"},

	// ── Infraestructura del tenant ────────────────────────────────────────
	{Name: "company_instances", SQL: "DELETE FROM company_instances WHERE company_id = $1", After: []string{"messages", "conversations", "bot_instances"}},
	{Name: "users", SQL: "DELETE FROM users WHERE company_id = $1", After: []string{"sales", "tasks", "appointments", "audit_logs", "system_logs", "alerts", "roadmap_comments", "follow_ups"}},
}
